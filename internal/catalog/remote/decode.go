package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

func (f flexString) Int64() int64 {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type roomEntry struct {
	RoomID       flexString `json:"roomId"`
	LegacyRoomID flexString `json:"room_id"`
}

func (r roomEntry) id() string {
	if r.RoomID != "" {
		return r.RoomID.String()
	}
	return r.LegacyRoomID.String()
}

type sessionEntry struct {
	ID        flexString `json:"id"`
	SessionID string     `json:"sessionId"`
	RoomID    flexString `json:"roomId"`
}

type partEntry struct {
	ID       flexString `json:"id"`
	FilePath string     `json:"filePath"`
}

// decodeList accepts either {"list": [...]} or a bare array.
func decodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}
	var envelope struct {
		List []T `json:"list"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return envelope.List, nil
}
