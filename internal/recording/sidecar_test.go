package recording

import (
	"strings"
	"testing"
	"time"
)

func TestParseSidecarElements(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<Recording>
  <Room>
    <RoomId>5050</RoomId>
    <ShortId>55</ShortId>
    <Name>主播</Name>
  </Room>
  <Title> 晚间杂谈 </Title>
  <AreaNameParent>娱乐</AreaNameParent>
  <AreaNameChild>聊天</AreaNameChild>
  <StartTime>2025-12-27T20:30:15.1234567+08:00</StartTime>
  <EndTime>2025-12-27T21:00:00+08:00</EndTime>
  <Title>ignored second title</Title>
</Recording>`

	info, err := parseSidecar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parseSidecar: %v", err)
	}
	if info.RoomID != "5050" || info.ShortID != "55" || info.Name != "主播" {
		t.Fatalf("unexpected identity fields: %+v", info)
	}
	if info.Title != "晚间杂谈" {
		t.Fatalf("expected first trimmed title, got %q", info.Title)
	}
	if info.AreaParent != "娱乐" || info.AreaChild != "聊天" {
		t.Fatalf("unexpected area: %+v", info)
	}
	wantStart := time.Date(2025, 12, 27, 20, 30, 15, 123456700, time.FixedZone("", 8*3600))
	if !info.StartTime.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", info.StartTime, wantStart)
	}
	if info.SessionID != "" {
		t.Fatalf("expected no session id, got %q", info.SessionID)
	}
}

func TestParseSidecarRecordInfoAttributes(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<i>
  <BililiveRecorder version="2.0" />
  <BililiveRecorderRecordInfo roomid="100" shortid="0" name="up" title="attr title" areanameparent="游戏" areanamechild="单机" start_time="2024-01-01T10:00:00+08:00" />
  <Title>element title</Title>
  <d p="1,1,25,16777215,0,0,0,0">hello</d>
</i>`

	info, err := parseSidecar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parseSidecar: %v", err)
	}
	if info.RoomID != "100" || info.Name != "up" || info.AreaParent != "游戏" {
		t.Fatalf("expected attribute values, got %+v", info)
	}
	if info.Title != "element title" {
		t.Fatalf("expected element to win over attribute, got %q", info.Title)
	}
	if SecondBucket(info.StartTime) != "2024-01-01T02:00:00Z" {
		t.Fatalf("unexpected start %v", info.StartTime)
	}
	if !info.RecordInfoStart {
		t.Fatal("expected start to be marked as coming from record info")
	}
}

func TestParseSidecarErrors(t *testing.T) {
	cases := map[string]string{
		"not xml":   "this is not xml",
		"truncated": "<Recording><RoomId>100</RoomId><Title>abc",
		"bad time":  "<Recording><StartTime>yesterday</StartTime></Recording>",
		"empty":     "",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSidecar(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}
