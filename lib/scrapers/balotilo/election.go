package balotilo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/dan-ringwald/balotilo/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// createState names the step the orchestration run has completed. The flow
// is linear with one recovery branch (re-login on an expired session), and
// each handler depends on identifiers produced by the previous response, so
// states advance strictly in order.
type createState int

const (
	stateStart createState = iota
	statePageFetched
	stateQuestionTemplateFetched
	stateListIdsCollected
	stateAssembled
	stateSubmitted
	stateDone
)

var editNewVotersPath = regexp.MustCompile(`/consultations/([^/]+)/edit_new_voters`)

// createRun holds the per-election orchestration state. Every DynamicID in
// here was extracted during this run and dies with it.
type createRun struct {
	client *Client
	cfg    ElectionConfig
	lists  []CandidateList

	retriedLogin   bool
	token          AnchorToken
	questionID     DynamicID
	listsContainer DynamicID
	listIDs        []DynamicID
	payload        url.Values
	submission     *resty.Response
	electionID     ElectionID
}

func (r *createRun) turboRequest(ctx context.Context) *resty.Request {
	return r.client.Http.R().
		SetContext(ctx).
		SetHeader("Turbo-Method", "GET").
		SetHeader("Turbo-Stream", "true").
		SetHeader("Accept", "text/vnd.turbo-stream.html, text/html, application/xhtml+xml").
		SetHeader("X-CSRF-Token", string(r.token))
}

// CreateElection runs the full multi-request creation protocol for one
// election and returns the server-assigned identifier. There is no
// automatic retry beyond a single re-login; any other failure is returned
// with context so the batch driver can skip and continue.
func (c *Client) CreateElection(ctx context.Context, cfg ElectionConfig, lists []CandidateList) (ElectionID, error) {
	ctx, span := tracer.Start(ctx, "client:CreateElection")
	defer span.End()

	run := &createRun{client: c, cfg: cfg, lists: lists}
	for state := stateStart; state != stateDone; {
		next, err := run.step(ctx, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("creation failed after state %d", state))
			return "", err
		}
		state = next
	}
	return run.electionID, nil
}

func (r *createRun) step(ctx context.Context, s createState) (createState, error) {
	switch s {
	case stateStart:
		return r.fetchCreatePage(ctx)
	case statePageFetched:
		return r.fetchQuestionTemplate(ctx)
	case stateQuestionTemplateFetched:
		return r.collectListIDs(ctx)
	case stateListIdsCollected:
		return r.assemble(ctx)
	case stateAssembled:
		return r.submit(ctx)
	case stateSubmitted:
		return r.classify(ctx)
	}
	return stateDone, fmt.Errorf("unhandled creation state %d", s)
}

// fetchCreatePage loads the creation form and extracts its anchor token.
// An expired session shows the login page instead; that triggers the one
// built-in recovery: re-login and refetch, once.
func (r *createRun) fetchCreatePage(ctx context.Context) (createState, error) {
	res, err := r.client.Http.R().
		SetContext(ctx).
		Get("/consultations/new")
	if err != nil {
		return 0, fmt.Errorf("fetch creation page: %w", err)
	}

	if !strings.Contains(res.String(), "New election") {
		if !r.retriedLogin && strings.Contains(res.String(), "Log in") {
			slog.InfoContext(ctx, "session expired, logging in again")
			r.retriedLogin = true
			if err := r.client.Login(ctx); err != nil {
				return 0, err
			}
			return stateStart, nil
		}
		return 0, fmt.Errorf("not on the creation page: %w",
			&DiscoveryError{Marker: "New election", Scope: "/consultations/new"})
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return 0, fmt.Errorf("parse creation page: %w", err)
	}
	form := doc.Find("form#new_consultation").First()
	if form.Length() == 0 {
		return 0, &DiscoveryError{Marker: "form#new_consultation", Scope: "/consultations/new"}
	}
	r.token, err = FormToken(form)
	if err != nil {
		return 0, err
	}
	return statePageFetched, nil
}

// fetchQuestionTemplate asks the server to render one list-voting question
// section and pulls the question id and lists-container id out of it.
func (r *createRun) fetchQuestionTemplate(ctx context.Context) (createState, error) {
	res, err := r.turboRequest(ctx).
		SetQueryParam("question_type", "ListVoting").
		Get("/consultations/add_question")
	if err != nil {
		return 0, fmt.Errorf("fetch question template: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return 0, fmt.Errorf("parse question template: %w", err)
	}

	r.questionID, err = ExtractQuestionID(doc.Selection)
	if err != nil {
		return 0, err
	}
	r.listsContainer, err = ExtractListsContainerID(doc.Selection)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "question template discovered",
		"question_id", r.questionID, "lists_container", r.listsContainer)
	return stateQuestionTemplateFetched, nil
}

// collectListIDs requests one list slot per declared list. The requests are
// strictly sequential: the server tracks how many slots this session has
// allocated, so each response depends on the previous request.
func (r *createRun) collectListIDs(ctx context.Context) (createState, error) {
	for _, list := range r.lists {
		res, err := r.turboRequest(ctx).
			SetQueryParam("lists_id", string(r.listsContainer)).
			SetQueryParam("question_index", string(r.questionID)).
			Get("/consultations/add_list")
		if err != nil {
			return 0, fmt.Errorf("fetch list template for %q: %w", list.Title, err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			return 0, fmt.Errorf("parse list template for %q: %w", list.Title, err)
		}

		id, err := ExtractListID(doc.Selection)
		var discovery *DiscoveryError
		if errors.As(err, &discovery) {
			slog.WarnContext(ctx, "could not extract an identifier for list", "list", list.Title)
			continue
		}
		if err != nil {
			return 0, err
		}
		slog.DebugContext(ctx, "list slot allocated", "list", list.Title, "list_id", id)
		r.listIDs = append(r.listIDs, id)
	}
	return stateListIdsCollected, nil
}

func (r *createRun) assemble(ctx context.Context) (createState, error) {
	r.payload = AssembleConsultation(ctx, r.cfg, r.token, r.questionID, r.listIDs, r.lists)
	return stateAssembled, nil
}

// submit issues the composite POST with redirects disabled so the
// orchestrator, not the transport layer, interprets the response code.
func (r *createRun) submit(ctx context.Context) (createState, error) {
	res, err := r.client.NoRedirect.R().
		SetContext(ctx).
		SetHeader("Origin", r.client.BaseUrl.String()).
		SetHeader("Referer", htmlutil.AbsoluteURL(r.client.BaseUrl, "/consultations/new")).
		SetHeader("X-CSRF-Token", string(r.token)).
		SetFormDataFromValues(r.payload).
		Post("/consultations")
	if err != nil {
		return 0, fmt.Errorf("submit creation form: %w", err)
	}
	r.submission = res
	return stateSubmitted, nil
}

// classify decides the outcome: a redirect onto the voter setup page is the
// only success signal; anything else (including a 2xx re-rendering the
// form) is a rejection with whatever diagnostics can be extracted.
func (r *createRun) classify(ctx context.Context) (createState, error) {
	res := r.submission
	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		location := res.Header().Get("Location")
		if m := editNewVotersPath.FindStringSubmatch(location); m != nil {
			r.electionID = ElectionID(m[1])
			slog.InfoContext(ctx, "election created", "election_id", r.electionID)
			return stateDone, nil
		}
		return 0, &SubmissionError{
			StatusCode: res.StatusCode(),
			Flash:      fmt.Sprintf("unexpected redirect to %s", res.Header().Get("Location")),
		}
	}
	return 0, r.extractSubmissionError(res)
}

const submissionExcerptLimit = 2000

func (r *createRun) extractSubmissionError(res *resty.Response) error {
	subErr := &SubmissionError{StatusCode: res.StatusCode()}

	body := res.String()
	if len(body) > submissionExcerptLimit {
		body = body[:submissionExcerptLimit]
	}
	subErr.Excerpt = body

	// best effort only, diagnostics should not mask the rejection itself
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return subErr
	}
	doc.Find(".error").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			text := strings.TrimSpace(htmlutil.GetText(node))
			if text != "" {
				subErr.FieldErrors = append(subErr.FieldErrors, text)
			}
		}
	})
	flash := doc.Find("div#flash").First()
	if flash.Length() > 0 {
		subErr.Flash = strings.TrimSpace(flash.Text())
	}
	return subErr
}
