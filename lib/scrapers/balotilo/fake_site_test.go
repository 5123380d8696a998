package balotilo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dan-ringwald/balotilo/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "user@example.org"
	testPassword = "hunter2"
)

// fakeSite reproduces the subset of the voting platform's behavior the
// client depends on: csrf tokens in meta tags and forms, turbo fragments
// with server-assigned identifiers, and redirect-based success signals.
type fakeSite struct {
	t      *testing.T
	server *httptest.Server

	loggedIn         bool
	rejectSubmission bool
	rejectImport     bool
	listSlots        int
	submitted        url.Values
	importedEmails   string
}

func newFakeSite(t *testing.T) *fakeSite {
	site := &fakeSite{t: t}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="csrf-token" content="landing-token"></head><body>Votes</body></html>`)
	})

	mux.HandleFunc("POST /locale", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "patch", r.PostForm.Get("_method"))
		require.NotEmpty(t, r.PostForm.Get("authenticity_token"))
		http.Redirect(w, r, "/", http.StatusFound)
	})

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Log in</h1>
			<form class="new_user_session" action="/user_session" method="post">
				<input type="hidden" name="authenticity_token" value="login-token">
				<input type="hidden" name="challenge" value="echo-me">
				<input name="user_session[email]" type="email">
				<input name="user_session[password]" type="password">
				<input type="submit" name="commit" value="Log in">
			</form></body></html>`)
	})

	mux.HandleFunc("POST /user_session", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		// hidden anti-automation fields must be echoed back untouched
		require.Equal(t, "echo-me", r.PostForm.Get("challenge"))
		require.Equal(t, "login-token", r.PostForm.Get("authenticity_token"))

		if r.PostForm.Get("user_session[email]") == testEmail &&
			r.PostForm.Get("user_session[password]") == testPassword {
			site.loggedIn = true
			fmt.Fprint(w, `<html><body><a href="/consultations">My elections</a></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><h1>Log in</h1>Invalid email or password</body></html>`)
	})

	mux.HandleFunc("GET /consultations", func(w http.ResponseWriter, r *http.Request) {
		if site.loggedIn {
			fmt.Fprint(w, `<html><body><a href="/consultations/new">Create an election</a></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><h1>Log in</h1></body></html>`)
	})

	mux.HandleFunc("GET /consultations/new", func(w http.ResponseWriter, r *http.Request) {
		if !site.loggedIn {
			fmt.Fprint(w, `<html><body><h1>Log in</h1></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><h1>New election</h1>
			<form id="new_consultation" action="/consultations" method="post">
				<input type="hidden" name="authenticity_token" value="create-token">
			</form></body></html>`)
	})

	mux.HandleFunc("GET /consultations/add_question", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ListVoting", r.URL.Query().Get("question_type"))
		require.Equal(t, "create-token", r.Header.Get("X-CSRF-Token"))
		fmt.Fprint(w, `<div class="question">
			<input type="hidden" name="consultation[questions_attributes][Q77][_destroy]" value="false">
			<input name="consultation[questions_attributes][Q77][content]">
			<div class="lists" id="lists_abc123"></div>
		</div>`)
	})

	mux.HandleFunc("GET /consultations/add_list", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "lists_abc123", r.URL.Query().Get("lists_id"))
		require.Equal(t, "Q77", r.URL.Query().Get("question_index"))
		site.listSlots++
		fmt.Fprintf(w, `<div class="list">
			<input type="hidden" name="consultation[questions_attributes][Q77][list_voting_new_lists][L%d][_destroy]" value="">
			<input name="consultation[questions_attributes][Q77][list_voting_new_lists][L%d][title]">
		</div>`, site.listSlots, site.listSlots)
	})

	mux.HandleFunc("POST /consultations", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		site.submitted = r.PostForm

		if site.rejectSubmission {
			fmt.Fprint(w, `<html><body><h1>New election</h1>
				<div id="flash">Something went wrong</div>
				<div class="error">Title can't be blank</div>
				<div class="error">Starting can't be blank</div>
				<form id="new_consultation"></form></body></html>`)
			return
		}
		w.Header().Set("Location", "/consultations/4242/edit_new_voters")
		w.WriteHeader(http.StatusSeeOther)
	})

	mux.HandleFunc("GET /consultations/4242", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="csrf-token" content="voters-token"></head><body></body></html>`)
	})

	mux.HandleFunc("POST /consultations/4242/import_new_voters", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "patch", r.PostForm.Get("_method"))
		require.Equal(t, "voters-token", r.PostForm.Get("authenticity_token"))
		site.importedEmails = r.PostForm.Get("consultation[new_voters_emails]")

		if site.rejectImport {
			w.Header().Set("Location", "/consultations/4242/edit_new_voters")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Header().Set("Location", "/consultations")
		w.WriteHeader(http.StatusFound)
	})

	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) client(t *testing.T) *Client {
	client, err := NewClient(ClientOptions{
		BaseUrl: s.server.URL,
		Credentials: Credentials{
			Email:    testEmail,
			Password: testPassword,
		},
	})
	require.NoError(t, err)
	return client
}

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("test:scrapers/balotilo")
	defer cleanup()
	m.Run()
}
