package recording

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const recordInfoElement = "BililiveRecorderRecordInfo"

// sidecarInfo is the subset of recorder metadata the importer understands.
// Empty fields mean the sidecar did not carry them.
type sidecarInfo struct {
	RoomID     string
	ShortID    string
	Name       string
	Title      string
	AreaParent string
	AreaChild  string
	StartTime  time.Time
	EndTime    time.Time
	SessionID  string
	// RecordInfoStart is set when StartTime came only from the record-info
	// attribute, which holds the file's own start rather than the broadcast's.
	RecordInfoStart bool
}

// sidecarElements maps element names to the field they fill.
var sidecarElements = map[string]func(*sidecarFields) *string{
	"RoomId":         func(f *sidecarFields) *string { return &f.roomID },
	"ShortId":        func(f *sidecarFields) *string { return &f.shortID },
	"Name":           func(f *sidecarFields) *string { return &f.name },
	"Title":          func(f *sidecarFields) *string { return &f.title },
	"AreaNameParent": func(f *sidecarFields) *string { return &f.areaParent },
	"AreaNameChild":  func(f *sidecarFields) *string { return &f.areaChild },
	"StartTime":      func(f *sidecarFields) *string { return &f.startTime },
	"EndTime":        func(f *sidecarFields) *string { return &f.endTime },
	"SessionId":      func(f *sidecarFields) *string { return &f.sessionID },
}

var recordInfoAttrs = map[string]func(*sidecarFields) *string{
	"roomid":         func(f *sidecarFields) *string { return &f.roomID },
	"shortid":        func(f *sidecarFields) *string { return &f.shortID },
	"name":           func(f *sidecarFields) *string { return &f.name },
	"title":          func(f *sidecarFields) *string { return &f.title },
	"areanameparent": func(f *sidecarFields) *string { return &f.areaParent },
	"areanamechild":  func(f *sidecarFields) *string { return &f.areaChild },
	"start_time":     func(f *sidecarFields) *string { return &f.startTime },
}

type sidecarFields struct {
	roomID, shortID, name, title, areaParent, areaChild string
	startTime, endTime, sessionID                       string
}

func readSidecar(path string) (sidecarInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return sidecarInfo{}, fmt.Errorf("open sidecar: %w", err)
	}
	defer file.Close()
	return parseSidecar(file)
}

func parseSidecar(r io.Reader) (sidecarInfo, error) {
	var elements, attrs sidecarFields

	decoder := xml.NewDecoder(r)

	sawElement := false
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sidecarInfo{}, fmt.Errorf("parse sidecar: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true

		if start.Name.Local == recordInfoElement {
			for _, attr := range start.Attr {
				if field, ok := recordInfoAttrs[strings.ToLower(attr.Name.Local)]; ok {
					setOnce(field(&attrs), attr.Value)
				}
			}
			continue
		}
		field, ok := sidecarElements[start.Name.Local]
		if !ok {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return sidecarInfo{}, fmt.Errorf("parse sidecar %s: %w", start.Name.Local, err)
		}
		setOnce(field(&elements), text)
	}
	if !sawElement {
		return sidecarInfo{}, errors.New("parse sidecar: no xml elements")
	}

	merged := mergeFields(elements, attrs)
	info := sidecarInfo{
		RoomID:     merged.roomID,
		ShortID:    merged.shortID,
		Name:       merged.name,
		Title:      merged.title,
		AreaParent: merged.areaParent,
		AreaChild:  merged.areaChild,
		SessionID:  merged.sessionID,

		RecordInfoStart: elements.startTime == "" && attrs.startTime != "",
	}
	var err error
	if info.StartTime, err = parseSidecarTime("StartTime", merged.startTime); err != nil {
		return sidecarInfo{}, err
	}
	if info.EndTime, err = parseSidecarTime("EndTime", merged.endTime); err != nil {
		return sidecarInfo{}, err
	}
	return info, nil
}

func setOnce(dst *string, value string) {
	if *dst != "" {
		return
	}
	*dst = strings.TrimSpace(value)
}

// mergeFields prefers element values over record-info attributes.
func mergeFields(elements, attrs sidecarFields) sidecarFields {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return sidecarFields{
		roomID:     pick(elements.roomID, attrs.roomID),
		shortID:    pick(elements.shortID, attrs.shortID),
		name:       pick(elements.name, attrs.name),
		title:      pick(elements.title, attrs.title),
		areaParent: pick(elements.areaParent, attrs.areaParent),
		areaChild:  pick(elements.areaChild, attrs.areaChild),
		startTime:  pick(elements.startTime, attrs.startTime),
		endTime:    pick(elements.endTime, attrs.endTime),
		sessionID:  pick(elements.sessionID, attrs.sessionID),
	}
}

func parseSidecarTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sidecar %s %q: %w", field, value, err)
	}
	return parsed, nil
}
