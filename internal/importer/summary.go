package importer

import (
	"fmt"

	"brecimport/internal/services"
)

// DefaultMaxErrors bounds the error lines kept in a Summary.
const DefaultMaxErrors = 10

// FileError is one failed file as reported in the summary.
type FileError struct {
	Path    string
	Kind    string
	Message string
}

func (e FileError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Summary aggregates a run.
type Summary struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
	// Errors holds the first failures in processing order.
	Errors        []FileError
	ErrorsOmitted int
}

func (s *Summary) record(result FileResult, maxErrors int) {
	s.Total++
	switch result.Outcome {
	case OutcomeImported:
		s.Imported++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
		if len(s.Errors) >= maxErrors {
			s.ErrorsOmitted++
			return
		}
		message := "unknown error"
		if result.Err != nil {
			message = result.Err.Error()
		}
		s.Errors = append(s.Errors, FileError{
			Path:    result.Path,
			Kind:    services.Classify(result.Err),
			Message: message,
		})
	}
}
