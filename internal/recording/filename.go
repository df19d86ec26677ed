package recording

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const dateTimeLayout = "20060102-150405"

var (
	dateTimePattern = regexp.MustCompile(`\d{8}-\d{6}`)
	titlePattern    = regexp.MustCompile(`-([^-]+)$`)
	dirRoomPattern  = regexp.MustCompile(`\d{4,}`)

	// Tried in order against the file stem; first match wins.
	roomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[^-\d]+-(\d+)-`),
		regexp.MustCompile(`^(\d+)-`),
		regexp.MustCompile(`(?:^|\D)(\d{4,})(?:\D|$)`),
	}
)

// filenameInfo holds everything recoverable from a path and its mtime.
type filenameInfo struct {
	roomID    string
	title     string
	startTime time.Time
	endTime   time.Time
	// startFromName is false when the start time fell back to mtime.
	startFromName bool
}

func parseFilename(path string, modTime time.Time, loc *time.Location) filenameInfo {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	info := filenameInfo{
		roomID:    roomFromPath(path, stem),
		title:     titleFromStem(stem),
		startTime: modTime,
		endTime:   modTime,
	}
	if token := dateTimePattern.FindString(stem); token != "" {
		if parsed, err := time.ParseInLocation(dateTimeLayout, token, loc); err == nil {
			info.startTime = parsed
			info.startFromName = true
		}
	}
	return info
}

func roomFromPath(path, stem string) string {
	// The recording timestamp is never a room id.
	subject := dateTimePattern.ReplaceAllString(stem, "-")
	for _, pattern := range roomPatterns {
		if m := pattern.FindStringSubmatch(subject); m != nil {
			return m[1]
		}
	}
	if m := dirRoomPattern.FindString(filepath.Base(filepath.Dir(path))); m != "" {
		return m
	}
	return UnknownRoomID
}

func titleFromStem(stem string) string {
	if m := titlePattern.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	return stem
}
