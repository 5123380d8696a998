package balotilo

// AnchorToken is the short-lived anti-forgery value (rails csrf token)
// required on every state-changing request. It is scoped to one rendered
// page and must be re-extracted before each submission.
type AnchorToken string

// DynamicID is a server-assigned identifier embedded in the field names of
// a rendered fragment (question id, list id, lists-container id). It only
// has meaning within the orchestration run that extracted it and must never
// be reused across runs or elections.
type DynamicID string

// ElectionID names a created consultation on the server, parsed out of the
// post-submission redirect path.
type ElectionID string

// ElectionConfig is the flat consultation record, merged from the shared
// baseline config plus the per-election override (currently the title).
type ElectionConfig struct {
	Title           string `yaml:"title" json:"title"`
	Community       string `yaml:"community" json:"community"`
	Description     string `yaml:"description" json:"description"`
	VotingMethod    string `yaml:"voting_method" json:"voting_method"`
	StartingMethod  string `yaml:"starting_method" json:"starting_method"`
	StartingPicker  string `yaml:"starting_picker" json:"starting_picker"`
	Starting        string `yaml:"starting" json:"starting"`
	EndingMethod    string `yaml:"ending_method" json:"ending_method"`
	Ending          string `yaml:"ending" json:"ending"`
	EndingPicker    string `yaml:"ending_picker" json:"ending_picker"`
	Locale          string `yaml:"locale" json:"locale"`
	TallyMethod     string `yaml:"tally_method" json:"tally_method"`
	QuestionContent string `yaml:"question_content" json:"question_content"`
}

// ending methods understood by the consultation form. the scheduled-ending
// and event-start field groups are mutually exclusive on the wire.
const (
	EndingScheduled         = "scheduled"
	EndingManualDuringEvent = "manual_during_event"
)

func (c ElectionConfig) withDefaults() ElectionConfig {
	if c.VotingMethod == "" {
		c.VotingMethod = "secret_ballot"
	}
	if c.StartingMethod == "" {
		c.StartingMethod = EndingScheduled
	}
	if c.EndingMethod == "" {
		c.EndingMethod = EndingScheduled
	}
	if c.Locale == "" {
		c.Locale = "fr"
	}
	if c.TallyMethod == "" {
		c.TallyMethod = "automatic"
	}
	if c.QuestionContent == "" {
		c.QuestionContent = "<p>Votez pour une liste</p>"
	}
	return c
}

// CandidateList is one declared list: a title and its candidates in ballot
// order. The order lists are declared in must match the order their
// DynamicIDs are discovered in.
type CandidateList struct {
	Title      string
	Candidates []string
}
