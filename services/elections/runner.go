package elections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dan-ringwald/balotilo/lib/scrapers/balotilo"

	"dario.cat/mergo"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/elections")

type Status string

const (
	StatusCreated      = Status("created")
	StatusImportFailed = Status("voters_failed")
	StatusSkipped      = Status("skipped")
	StatusFailed       = Status("failed")
)

// Outcome is the result of processing one election directory.
type Outcome struct {
	Directory  string
	Title      string
	ElectionID balotilo.ElectionID
	Status     Status
	Err        error
}

// Runner drives the whole batch: one login, then one orchestration run per
// election directory, strictly sequential. The client's session is owned by
// the runner for the duration; no two flows ever share it concurrently.
type Runner struct {
	Client  *balotilo.Client
	Journal *Journal
	// pause between elections, purely to stay under the site's rate limit
	Delay time.Duration
}

// ProcessAll logs in once and processes every election directory under dir.
// A failing election is recorded and skipped; only a failed login or an
// unreadable directory aborts the run.
func (r *Runner) ProcessAll(ctx context.Context, dir string) ([]Outcome, error) {
	ctx, span := tracer.Start(ctx, "runner:ProcessAll")
	defer span.End()

	if err := r.Client.Login(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	shared, err := LoadSharedConfig(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shared config missing")
		return nil, err
	}

	defs, err := DiscoverDefinitions(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return nil, err
	}

	var outcomes []Outcome
	for i, def := range defs {
		if i > 0 && r.Delay > 0 {
			select {
			case <-time.After(r.Delay):
			case <-ctx.Done():
				return outcomes, ctx.Err()
			}
		}

		outcome := r.processOne(ctx, shared, def)
		outcomes = append(outcomes, outcome)

		if r.Journal != nil {
			if err := r.Journal.Record(ctx, outcome); err != nil {
				slog.WarnContext(ctx, "failed to journal outcome", "directory", def.Name, "err", err)
			}
		}
	}
	return outcomes, nil
}

func (r *Runner) processOne(ctx context.Context, shared balotilo.ElectionConfig, def Definition) Outcome {
	ctx, span := tracer.Start(ctx, "runner:processOne")
	defer span.End()

	outcome := Outcome{Directory: def.Name}
	slog.InfoContext(ctx, "processing election", "directory", def.Name)

	if def.CandidatesFile == "" || def.VotersFile == "" {
		outcome.Status = StatusSkipped
		outcome.Err = fmt.Errorf("%w: %s", ErrMissingInputs, def.Name)
		slog.ErrorContext(ctx, "skipping election", "directory", def.Name, "err", outcome.Err)
		return outcome
	}

	cfg := balotilo.ElectionConfig{Title: electionTitle(shared.Title, def.Name)}
	if err := mergo.Merge(&cfg, shared); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Title = cfg.Title

	lists, err := LoadCandidates(def.CandidatesFile)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.Err = err
		slog.ErrorContext(ctx, "skipping election", "directory", def.Name, "err", err)
		return outcome
	}
	voters, err := LoadVoters(def.VotersFile)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.Err = err
		slog.ErrorContext(ctx, "skipping election", "directory", def.Name, "err", err)
		return outcome
	}

	slog.InfoContext(ctx, "creating election",
		"title", cfg.Title,
		"lists", len(lists),
		"voters", strings.Count(voters, "@"),
	)

	id, err := r.Client.CreateElection(ctx, cfg, lists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "creation failed")
		outcome.Status = StatusFailed
		outcome.Err = err
		slog.ErrorContext(ctx, "election creation failed", "directory", def.Name, "err", err)
		return outcome
	}
	outcome.ElectionID = id

	if err := r.Client.ImportVoters(ctx, id, voters); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "voter import failed")
		outcome.Status = StatusImportFailed
		outcome.Err = err
		slog.ErrorContext(ctx, "voter import failed", "election_id", id, "err", err)
		return outcome
	}

	outcome.Status = StatusCreated
	slog.InfoContext(ctx, "election ready", "election_id", id, "title", cfg.Title)
	return outcome
}

// electionTitle derives the per-election title from the shared title
// template and the directory name, "06_Alpes_Maritimes" -> "06 Alpes
// Maritimes" under the template prefix.
func electionTitle(template, dirname string) string {
	humanized := strings.ReplaceAll(dirname, "_", " ")
	if template == "" {
		return humanized
	}
	return fmt.Sprintf("%s - %s", template, humanized)
}

// RenderSummary prints the batch outcome table.
func RenderSummary(w io.Writer, outcomes []Outcome) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Directory", "Title", "Election", "Status", "Detail"})
	for _, o := range outcomes {
		detail := ""
		if o.Err != nil {
			detail = o.Err.Error()
		}
		t.AppendRow(table.Row{o.Directory, o.Title, string(o.ElectionID), string(o.Status), detail})
	}
	t.Render()
}
