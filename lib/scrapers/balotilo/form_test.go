package balotilo

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testConfig = ElectionConfig{
	Title:          "PPD 2025 - Ardèche",
	Community:      "Place Publique",
	VotingMethod:   "secret_ballot",
	StartingMethod: "scheduled",
	StartingPicker: "06/07/2025 7:00 AM",
	Starting:       "2025-06-07T07:00:00+02:00",
	EndingMethod:   EndingScheduled,
	Ending:         "2025-06-08T20:00:00+02:00",
	EndingPicker:   "06/08/2025 8:00 PM",
	Locale:         "fr",
	TallyMethod:    "automatic",
}

func TestAssembleConsultationLists(t *testing.T) {
	lists := []CandidateList{
		{Title: "List A", Candidates: []string{"Alice", "Bob"}},
		{Title: "List B", Candidates: []string{"Carol"}},
	}
	ids := []DynamicID{"L1", "L2"}

	form := AssembleConsultation(context.Background(), testConfig, "tok", "Q1", ids, lists)

	require.Equal(t, "tok", form.Get("authenticity_token"))
	require.Equal(t, "PPD 2025 - Ardèche", form.Get("consultation[title]"))
	require.Equal(t, "false", form.Get("consultation[questions_attributes][Q1][_destroy]"))
	require.Equal(t, "ListVoting", form.Get("consultation[questions_attributes][Q1][type_helper]"))
	require.Equal(t, "0", form.Get("consultation[questions_attributes][Q1][list_voting_strikethrough]"))

	require.Equal(t, "<p>List A</p>",
		form.Get("consultation[questions_attributes][Q1][list_voting_new_lists][L1][title]"))
	require.Equal(t, "<p>Alice<br>Bob</p>",
		form.Get("consultation[questions_attributes][Q1][list_voting_new_lists][L1][joined_candidates]"))
	require.Equal(t, "<p>List B</p>",
		form.Get("consultation[questions_attributes][Q1][list_voting_new_lists][L2][title]"))
	require.Equal(t, "<p>Carol</p>",
		form.Get("consultation[questions_attributes][Q1][list_voting_new_lists][L2][joined_candidates]"))
}

func TestAssembleConsultationDropsTrailingLists(t *testing.T) {
	lists := []CandidateList{
		{Title: "List A", Candidates: []string{"Alice"}},
		{Title: "List B", Candidates: []string{"Bob"}},
		{Title: "List C", Candidates: []string{"Carol"}},
	}
	// only two identifiers were discovered, the third list must be absent
	// from the payload entirely, not present with empty values
	form := AssembleConsultation(context.Background(), testConfig, "tok", "Q1", []DynamicID{"L1", "L2"}, lists)

	blocks := 0
	for key := range form {
		if key == "consultation[questions_attributes][Q1][list_voting_new_lists][L1][title]" ||
			key == "consultation[questions_attributes][Q1][list_voting_new_lists][L2][title]" {
			blocks++
		}
	}
	require.Equal(t, 2, blocks)

	for key, values := range form {
		for _, v := range values {
			require.NotEqual(t, "<p>List C</p>", v, "dropped list leaked into key %s", key)
		}
	}
}

func TestAssembleConsultationConditionalFields(t *testing.T) {
	scheduled := testConfig
	scheduled.EndingMethod = EndingScheduled
	form := AssembleConsultation(context.Background(), scheduled, "tok", "Q1", nil, nil)
	require.Equal(t, scheduled.Ending, form.Get("consultation[ending]"))
	require.Equal(t, scheduled.EndingPicker, form.Get("ending_picker"))
	require.False(t, form.Has("consultation[event_start]"))
	require.False(t, form.Has("event_start_picker"))

	manual := testConfig
	manual.EndingMethod = EndingManualDuringEvent
	form = AssembleConsultation(context.Background(), manual, "tok", "Q1", nil, nil)
	require.Equal(t, manual.Starting, form.Get("consultation[event_start]"))
	require.Equal(t, manual.StartingPicker, form.Get("event_start_picker"))
	require.False(t, form.Has("consultation[ending]"))
	require.False(t, form.Has("ending_picker"))
}

func TestAssembleConsultationOptionalDescription(t *testing.T) {
	form := AssembleConsultation(context.Background(), testConfig, "tok", "Q1", nil, nil)
	require.False(t, form.Has("consultation[description]"))

	withDescription := testConfig
	withDescription.Description = "<p>Scrutin de liste</p>"
	form = AssembleConsultation(context.Background(), withDescription, "tok", "Q1", nil, nil)
	require.Equal(t, "<p>Scrutin de liste</p>", form.Get("consultation[description]"))
}

func TestAssembleConsultationDeterministic(t *testing.T) {
	lists := []CandidateList{
		{Title: "List A", Candidates: []string{"Alice", "Bob"}},
	}
	ids := []DynamicID{"L1"}

	first := AssembleConsultation(context.Background(), testConfig, "tok", "Q1", ids, lists)
	second := AssembleConsultation(context.Background(), testConfig, "tok", "Q1", ids, lists)

	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestAssembleConsultationDefaults(t *testing.T) {
	form := AssembleConsultation(context.Background(), ElectionConfig{Title: "t"}, "tok", "Q1", nil, nil)

	require.Equal(t, "secret_ballot", form.Get("consultation[voting_method]"))
	require.Equal(t, "automatic", form.Get("consultation[tally_method]"))
	require.Equal(t, "fr", form.Get("consultation[locale]"))
	require.Equal(t, "<p>Votez pour une liste</p>",
		form.Get("consultation[questions_attributes][Q1][content]"))
	require.Equal(t, "Submit", form.Get("commit"))
}
