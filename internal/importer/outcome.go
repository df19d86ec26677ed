package importer

// Outcome is the terminal state of one file.
type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Step names used in logs and error messages.
const (
	StepExtract        = "extract"
	StepRoomCheck      = "room_check"
	StepDedupCheck     = "dedup_check"
	StepSessionResolve = "session_resolve"
	StepPartCreate     = "part_create"
)

// FileResult describes how one file finished.
type FileResult struct {
	Path       string
	Outcome    Outcome
	Step       string
	SessionKey string
	Err        error
}
