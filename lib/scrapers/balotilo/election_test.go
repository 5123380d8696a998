package balotilo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var testLists = []CandidateList{
	{Title: "List A", Candidates: []string{"Alice", "Bob"}},
	{Title: "List B", Candidates: []string{"Carol"}},
}

func TestCreateElection(t *testing.T) {
	site := newFakeSite(t)
	client := site.client(t)
	ctx := context.Background()

	require.NoError(t, client.Login(ctx))

	id, err := client.CreateElection(ctx, testConfig, testLists)
	require.NoError(t, err)
	require.Equal(t, ElectionID("4242"), id)

	// one slot was allocated per declared list, strictly in order
	require.Equal(t, 2, site.listSlots)

	form := site.submitted
	require.Equal(t, "create-token", form.Get("authenticity_token"))
	require.Equal(t, "PPD 2025 - Ardèche", form.Get("consultation[title]"))
	require.Equal(t, "false", form.Get("consultation[questions_attributes][Q77][_destroy]"))
	require.Equal(t, "<p>List A</p>",
		form.Get("consultation[questions_attributes][Q77][list_voting_new_lists][L1][title]"))
	require.Equal(t, "<p>Alice<br>Bob</p>",
		form.Get("consultation[questions_attributes][Q77][list_voting_new_lists][L1][joined_candidates]"))
	require.Equal(t, "<p>List B</p>",
		form.Get("consultation[questions_attributes][Q77][list_voting_new_lists][L2][title]"))
}

func TestCreateElectionReloginOnExpiredSession(t *testing.T) {
	site := newFakeSite(t)
	client := site.client(t)
	ctx := context.Background()

	// never logged in: the creation page renders the login screen, the
	// orchestrator must recover with a single re-login
	id, err := client.CreateElection(ctx, testConfig, testLists)
	require.NoError(t, err)
	require.Equal(t, ElectionID("4242"), id)
	require.True(t, site.loggedIn)
}

func TestCreateElectionRejected(t *testing.T) {
	site := newFakeSite(t)
	site.rejectSubmission = true
	client := site.client(t)
	ctx := context.Background()

	require.NoError(t, client.Login(ctx))

	_, err := client.CreateElection(ctx, testConfig, testLists)
	var rejection *SubmissionError
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, 200, rejection.StatusCode)
	require.Contains(t, rejection.FieldErrors, "Title can't be blank")
	require.Contains(t, rejection.FieldErrors, "Starting can't be blank")
	require.Equal(t, "Something went wrong", rejection.Flash)
	require.NotEmpty(t, rejection.Excerpt)
}
