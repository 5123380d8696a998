package balotilo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// ImportVoters submits the whole voter-email blob as a single request
// against a freshly created election. No per-email validation or chunking,
// the server is the source of truth for duplicates and bad addresses.
// Success means "redirected away from the editor": the server bounces back
// to the edit_new_voters page when the import is rejected.
func (c *Client) ImportVoters(ctx context.Context, id ElectionID, emails string) error {
	ctx, span := tracer.Start(ctx, "client:ImportVoters")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/consultations/" + url.PathEscape(string(id)))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch election page")
		return fmt.Errorf("fetch election page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse election page")
		return fmt.Errorf("parse election page: %w", err)
	}
	token, err := MetaCSRFToken(doc)
	if err != nil {
		span.SetStatus(codes.Error, "missing election page csrf token")
		return err
	}

	electionPath := "/consultations/" + url.PathEscape(string(id))
	res, err = c.NoRedirect.R().
		SetContext(ctx).
		SetHeader("Origin", c.BaseUrl.String()).
		SetHeader("Referer", c.BaseUrl.String()+electionPath).
		SetFormData(map[string]string{
			"_method":                         "patch",
			"authenticity_token":              string(token),
			"consultation[new_voters_emails]": emails,
			"button":                          "",
		}).
		Post(electionPath + "/import_new_voters")
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit voter import")
		return fmt.Errorf("submit voter import: %w", err)
	}

	location := res.Header().Get("Location")
	redirected := res.StatusCode() >= 300 && res.StatusCode() < 400
	if redirected &&
		strings.Contains(location, "/consultations") &&
		!editNewVotersPath.MatchString(location) {
		return nil
	}

	importErr := &ImportError{StatusCode: res.StatusCode(), Location: location}
	span.SetStatus(codes.Error, importErr.Error())
	return importErr
}
