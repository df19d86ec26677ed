package remote

import (
	"strconv"
	"time"

	"brecimport/internal/recording"
)

const eventFileClosed = "FileClosed"

type fileEvent struct {
	EventType      string     `json:"event_type"`
	EventTimestamp string     `json:"event_timestamp"`
	CorrelationID  string     `json:"correlation_id"`
	Payload        fileClosed `json:"payload"`
}

type fileClosed struct {
	RelativePath string `json:"relative_path"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
	Path         string `json:"path"`
	SessionKey   string `json:"session_key"`
	RoomID       int64  `json:"room_id"`
	ShortID      int64  `json:"short_id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	AreaParent   string `json:"area_parent"`
	AreaChild    string `json:"area_child"`
	SizeBytes    int64  `json:"size_bytes"`
}

func newFileEvent(correlationID, sessionKey string, c recording.Candidate) fileEvent {
	return fileEvent{
		EventType:      eventFileClosed,
		EventTimestamp: formatEventTime(c.EndTime),
		CorrelationID:  correlationID,
		Payload: fileClosed{
			RelativePath: c.FileName,
			OpenTime:     formatEventTime(c.StartTime),
			CloseTime:    formatEventTime(c.EndTime),
			Path:         c.ContainerPath,
			SessionKey:   sessionKey,
			RoomID:       safeInt(c.RoomID),
			ShortID:      safeInt(c.ShortID),
			Name:         c.DisplayName,
			Title:        c.Title,
			AreaParent:   c.AreaParent,
			AreaChild:    c.AreaChild,
			SizeBytes:    c.SizeBytes,
		},
	}
}

func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// safeInt maps empty or non-numeric ids to zero.
func safeInt(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
