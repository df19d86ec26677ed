package services_test

import (
	"errors"
	"strings"
	"testing"

	"brecimport/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrPersist, "part_create", "insert", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPersist) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"part_create", "insert", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToPersist(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrPersist) {
		t.Fatalf("expected persist marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "import failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"extraction", services.Wrap(services.ErrExtraction, "extract", "sidecar", "bad xml", nil), services.KindExtraction},
		{"room", services.Wrap(services.ErrRoomNotRegistered, "room_check", "", "room 5050", nil), services.KindRoom},
		{"persist", services.Wrap(services.ErrPersist, "part_create", "", "", errors.New("io")), services.KindPersist},
		{"setup", services.Wrap(services.ErrSetup, "setup", "", "missing dir", nil), services.KindSetup},
		{"plain", errors.New("plain"), services.KindUnknown},
		{"nil", nil, services.KindUnknown},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.want {
			t.Fatalf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRoomErrorMentionsRoom(t *testing.T) {
	err := services.Wrap(services.ErrRoomNotRegistered, "room_check", "", "room 100 is not configured", nil)
	if !strings.Contains(err.Error(), "room") {
		t.Fatalf("expected room in message, got %q", err.Error())
	}
}
