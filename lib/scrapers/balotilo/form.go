package balotilo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// AssembleConsultation builds the composite creation payload from the
// config record and the identifiers discovered earlier in the same run.
// Lists pair positionally with listIDs; declared lists beyond the number of
// discovered identifiers are dropped with a warning so a partial submission
// can still go through. The transform is pure apart from that warning.
func AssembleConsultation(
	ctx context.Context,
	cfg ElectionConfig,
	token AnchorToken,
	questionID DynamicID,
	listIDs []DynamicID,
	lists []CandidateList,
) url.Values {
	cfg = cfg.withDefaults()

	form := url.Values{}
	form.Set("authenticity_token", string(token))
	form.Set("consultation[title]", cfg.Title)
	form.Set("consultation[community]", cfg.Community)
	// omission, not empty-string inclusion, is what the server expects for
	// optional fields
	if cfg.Description != "" {
		form.Set("consultation[description]", cfg.Description)
	}
	form.Set("consultation[voting_method]", cfg.VotingMethod)
	form.Set("consultation[starting_method]", cfg.StartingMethod)
	form.Set("consultation[starting_picker]", cfg.StartingPicker)
	form.Set("consultation[starting]", cfg.Starting)
	form.Set("consultation[ending_method]", cfg.EndingMethod)

	switch cfg.EndingMethod {
	case EndingScheduled:
		form.Set("consultation[ending]", cfg.Ending)
		form.Set("ending_picker", cfg.EndingPicker)
	case EndingManualDuringEvent:
		form.Set("consultation[event_start]", cfg.Starting)
		form.Set("event_start_picker", cfg.StartingPicker)
	}

	form.Set("consultation[locale]", cfg.Locale)
	form.Set("consultation[tally_method]", cfg.TallyMethod)

	question := func(field string) string {
		return fmt.Sprintf("consultation[questions_attributes][%s][%s]", questionID, field)
	}
	form.Set(question("_destroy"), "false")
	form.Set(question("content"), cfg.QuestionContent)
	form.Set(question("type_helper"), "ListVoting")
	form.Set(question("position"), "")
	form.Set(question("list_voting_strikethrough"), "0")

	for i, list := range lists {
		if i >= len(listIDs) {
			slog.WarnContext(ctx, "skipping candidate list, no identifier discovered",
				"list", list.Title)
			continue
		}
		nested := func(field string) string {
			return fmt.Sprintf(
				"consultation[questions_attributes][%s][list_voting_new_lists][%s][%s]",
				questionID, listIDs[i], field,
			)
		}
		form.Set(nested("_destroy"), "")
		form.Set(nested("title"), "<p>"+list.Title+"</p>")
		form.Set(nested("joined_candidates"), "<p>"+strings.Join(list.Candidates, "<br>")+"</p>")
	}

	form.Set("commit", "Submit")
	return form
}
