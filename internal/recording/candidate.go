package recording

import "time"

// UnknownRoomID is reported when neither the sidecar nor the path yields a room.
const UnknownRoomID = "0"

// Source records where a candidate's descriptive fields came from.
type Source string

const (
	SourceSidecar  Source = "sidecar"
	SourceFilename Source = "filename"
)

// Candidate is the normalized identity of one recording file.
type Candidate struct {
	RoomID        string
	ShortID       string
	DisplayName   string
	Title         string
	AreaParent    string
	AreaChild     string
	StartTime     time.Time
	EndTime       time.Time
	SessionKey    string
	SourcePath    string
	ContainerPath string
	FileName      string
	SizeBytes     int64
	Source        Source
}
