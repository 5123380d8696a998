package balotilo

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dan-ringwald/balotilo/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// literal page text present only for authenticated users. the locale is
// forced to english during login precisely so these stay meaningful.
var authenticatedMarkers = []string{"My elections", "Create an election"}

func isAuthenticatedPage(body string) bool {
	for _, marker := range authenticatedMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// Login walks the landing page, forces the locale to english, then submits
// the login form with every unknown hidden field echoed back. Success is
// classified by authenticated-only page text, with a members-page probe as
// fallback since the server may answer with a non-obvious redirect chain.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse landing page html")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	token, err := MetaCSRFToken(doc)
	if err != nil {
		span.SetStatus(codes.Error, "missing landing page csrf token")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	_, err = c.Http.R().
		SetContext(ctx).
		SetHeader("Origin", c.BaseUrl.String()).
		SetHeader("Referer", c.BaseUrl.String()).
		SetFormData(map[string]string{
			"_method":            "patch",
			"authenticity_token": string(token),
			"locale":             "en",
		}).
		Post("/locale")
	if err != nil {
		span.SetStatus(codes.Error, "failed to set locale")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	res, err = c.Http.R().
		SetContext(ctx).
		Get("/login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	doc, err = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page html")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	form := doc.Find("form.new_user_session").First()
	if form.Length() == 0 {
		span.SetStatus(codes.Error, "could not find login form")
		return fmt.Errorf("%w: could not find the login form", ErrLoginFailed)
	}
	if _, err := FormToken(form); err != nil {
		span.SetStatus(codes.Error, "missing login form token")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	action := form.AttrOr("action", "/user_session")
	fields := htmlutil.FormFields(form, "user_session[email]", "user_session[password]")
	fields.Set("user_session[email]", c.creds.Email)
	fields.Set("user_session[password]", c.creds.Password)

	res, err = c.Http.R().
		SetContext(ctx).
		SetHeader("Origin", c.BaseUrl.String()).
		SetHeader("Referer", htmlutil.AbsoluteURL(c.BaseUrl, "/login")).
		SetFormDataFromValues(fields).
		Post(htmlutil.AbsoluteURL(c.BaseUrl, action))
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit login form")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if isAuthenticatedPage(res.String()) {
		return nil
	}

	// the primary classification is ambiguous, probe a members-only page
	res, err = c.Http.R().
		SetContext(ctx).
		Get("/consultations")
	if err != nil {
		span.SetStatus(codes.Error, "failed to probe consultations page")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if isAuthenticatedPage(res.String()) {
		return nil
	}

	span.SetStatus(codes.Error, ErrLoginFailed.Error())
	return fmt.Errorf("%w: please check your credentials", ErrLoginFailed)
}
