package recording

import (
	"testing"
	"time"
)

func TestDeriveSessionKeyKnownVectors(t *testing.T) {
	cases := []struct {
		room, bucket, want string
	}{
		{"100", "20240101", "f7d111fd8e96abad"},
		{"100", "20240102", "983b43a271008f44"},
		{"5050", "20251227", "ecc269e46c8ed357"},
		{"100", "2024-01-01T10:00:00+08:00", "a082043fe7c46f0b"},
		{"100", "2024-01-01T02:00:00Z", "7687ec7309e3d0c3"},
	}
	for _, tc := range cases {
		if got := DeriveSessionKey(tc.room, tc.bucket); got != tc.want {
			t.Fatalf("DeriveSessionKey(%q, %q) = %q, want %q", tc.room, tc.bucket, got, tc.want)
		}
	}
}

func TestDeriveSessionKeyDeterministic(t *testing.T) {
	first := DeriveSessionKey("5050", "20251227")
	for range 5 {
		if got := DeriveSessionKey("5050", "20251227"); got != first {
			t.Fatalf("expected stable key %q, got %q", first, got)
		}
	}
	if len(first) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(first))
	}
}

func TestBuckets(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)
	start := time.Date(2024, 1, 1, 10, 0, 0, 123456789, cst)

	if got := DayBucket(start); got != "20240101" {
		t.Fatalf("DayBucket = %q", got)
	}
	if got := SecondBucket(start); got != "2024-01-01T02:00:00Z" {
		t.Fatalf("SecondBucket = %q", got)
	}
}

func TestSecondBucketIgnoresOffset(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)
	local := time.Date(2024, 1, 1, 10, 0, 0, 0, cst)
	utc := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)

	if SecondBucket(local) != SecondBucket(utc) {
		t.Fatalf("same instant bucketed differently: %q vs %q", SecondBucket(local), SecondBucket(utc))
	}
	if DeriveSessionKey("100", SecondBucket(local)) != "7687ec7309e3d0c3" {
		t.Fatalf("unexpected key for %q", SecondBucket(local))
	}
}
