package recording

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

const sessionKeyLength = 16

// DeriveSessionKey returns the first 16 hex characters of md5("{room}_{bucket}").
func DeriveSessionKey(roomID, bucket string) string {
	sum := md5.Sum([]byte(roomID + "_" + bucket))
	return hex.EncodeToString(sum[:])[:sessionKeyLength]
}

// DayBucket groups filename-derived starts by calendar day.
func DayBucket(t time.Time) string {
	return t.Format("20060102")
}

// SecondBucket keys sidecar-derived starts at second resolution. The instant
// is rendered in UTC so equal instants written with different offsets match.
func SecondBucket(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
