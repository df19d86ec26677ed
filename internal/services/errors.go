package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction        = errors.New("extraction error")
	ErrRoomNotRegistered = errors.New("room not registered")
	ErrPersist           = errors.New("persist error")
	ErrSetup             = errors.New("setup error")
)

// Classification labels returned by Classify.
const (
	KindExtraction = "extraction"
	KindRoom       = "room"
	KindPersist    = "persist"
	KindSetup      = "setup"
	KindUnknown    = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPersist
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the short kind label used in run summaries.
func Classify(err error) string {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrRoomNotRegistered):
		return KindRoom
	case errors.Is(err, ErrPersist):
		return KindPersist
	case errors.Is(err, ErrSetup):
		return KindSetup
	default:
		return KindUnknown
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "import failure"
	}
	return strings.Join(parts, ": ")
}
