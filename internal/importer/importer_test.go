package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"brecimport/internal/catalog"
	"brecimport/internal/catalog/sqlitestore"
	"brecimport/internal/importer"
	"brecimport/internal/logging"
	"brecimport/internal/recording"
	"brecimport/internal/services"
	"brecimport/internal/testsupport"
)

// memoryBackend is an in-memory catalog with injectable failures.
type memoryBackend struct {
	rooms       map[string]bool
	sessions    map[string]int64
	parts       map[string]string
	partErr     map[string]error
	dedupErr    error
	createCalls int
}

func newMemoryBackend(rooms ...string) *memoryBackend {
	b := &memoryBackend{
		rooms:    map[string]bool{},
		sessions: map[string]int64{},
		parts:    map[string]string{},
		partErr:  map[string]error{},
	}
	for _, room := range rooms {
		b.rooms[room] = true
	}
	return b
}

func (b *memoryBackend) RoomExists(_ context.Context, roomID string) (bool, error) {
	return b.rooms[roomID], nil
}

func (b *memoryBackend) PartExists(_ context.Context, path string) (bool, error) {
	if b.dedupErr != nil {
		return false, b.dedupErr
	}
	_, ok := b.parts[path]
	return ok, nil
}

func (b *memoryBackend) ResolveOrCreateSession(_ context.Context, c recording.Candidate) (catalog.SessionRef, error) {
	id, ok := b.sessions[c.SessionKey]
	if !ok {
		id = int64(len(b.sessions) + 1)
		b.sessions[c.SessionKey] = id
	}
	return catalog.SessionRef{ID: id, Key: c.SessionKey}, nil
}

func (b *memoryBackend) CreatePart(_ context.Context, ref catalog.SessionRef, c recording.Candidate) error {
	b.createCalls++
	if err := b.partErr[c.ContainerPath]; err != nil {
		return err
	}
	b.parts[c.ContainerPath] = ref.Key
	return nil
}

func (b *memoryBackend) Close() error { return nil }

func newExtractor(t *testing.T, root string) *recording.Extractor {
	t.Helper()

	extractor, err := recording.NewExtractor(recording.Options{
		Mode:          recording.ModeSidecar,
		ScanRoot:      root,
		ContainerRoot: "/rec",
		Location:      time.UTC,
	})
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return extractor
}

func newImporter(t *testing.T, root string, backend catalog.Backend) *importer.Importer {
	t.Helper()

	im, err := importer.New(newExtractor(t, root), backend, importer.Options{}, logging.NewNop())
	if err != nil {
		t.Fatalf("importer.New: %v", err)
	}
	return im
}

func scan(t *testing.T, root string) []string {
	t.Helper()

	paths, err := recording.Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return paths
}

func writeScenario(t *testing.T, root string) {
	t.Helper()

	mtime := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	testsupport.WriteRecording(t, root, "100/rec-100-20240101-100000-a.flv", 100, mtime)
	testsupport.WriteRecording(t, root, "100/rec-100-20240101-103000-b.flv", 200, mtime)
}

func TestScenarioAgainstStoreIsIdempotent(t *testing.T) {
	for name, opts := range map[string][]testsupport.CatalogOption{
		"current": nil,
		"legacy":  {testsupport.LegacySchema()},
	} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeScenario(t, root)
			dbPath := testsupport.NewCatalogDB(t, opts...)
			testsupport.SeedRoom(t, dbPath, "100")

			store, err := sqlitestore.Open(context.Background(), dbPath, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer store.Close()

			im := newImporter(t, root, store)
			summary, err := im.Run(context.Background(), scan(t, root))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if summary.Total != 2 || summary.Imported != 2 || summary.Skipped != 0 || summary.Failed != 0 {
				t.Fatalf("unexpected first summary: %+v", summary)
			}
			if n := testsupport.CountRows(t, dbPath, "record_histories", "session_id = ?", "f7d111fd8e96abad"); n != 1 {
				t.Fatalf("expected one session, got %d", n)
			}
			if n := testsupport.CountRows(t, dbPath, "record_history_parts", ""); n != 2 {
				t.Fatalf("expected two parts, got %d", n)
			}
			if n := testsupport.CountRows(t, dbPath, "record_history_parts", "file_path = ?", "/rec/100/rec-100-20240101-100000-a.flv"); n != 1 {
				t.Fatalf("expected container path persisted as dedup key")
			}

			again, err := im.Run(context.Background(), scan(t, root))
			if err != nil {
				t.Fatalf("second Run: %v", err)
			}
			if again.Imported != 0 || again.Skipped != 2 || again.Failed != 0 {
				t.Fatalf("unexpected second summary: %+v", again)
			}
			if n := testsupport.CountRows(t, dbPath, "record_history_parts", ""); n != 2 {
				t.Fatalf("second run must not add parts, got %d", n)
			}
		})
	}
}

func TestUnregisteredRoomFails(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)
	dbPath := testsupport.NewCatalogDB(t)

	store, err := sqlitestore.Open(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	paths := scan(t, root)[:1]
	summary, err := newImporter(t, root, store).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Imported != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Kind != services.KindRoom {
		t.Fatalf("expected room error, got %+v", summary.Errors)
	}
	if !strings.Contains(summary.Errors[0].Message, "room") {
		t.Fatalf("error should mention the room: %q", summary.Errors[0].Message)
	}
	if n := testsupport.CountRows(t, dbPath, "record_histories", ""); n != 0 {
		t.Fatalf("room gate must not write, found %d sessions", n)
	}
}

func TestFailureIsolation(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)
	testsupport.WriteRecording(t, root, "100/rec-100-20240101-110000-c.flv", 1, time.Time{})

	backend := newMemoryBackend("100")
	backend.partErr["/rec/100/rec-100-20240101-103000-b.flv"] = errors.New("disk full")

	summary, err := newImporter(t, root, backend).Run(context.Background(), scan(t, root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Imported != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Errors[0].Kind != services.KindPersist || !strings.Contains(summary.Errors[0].Message, "disk full") {
		t.Fatalf("unexpected error entry: %+v", summary.Errors[0])
	}
}

func TestDedupErrorNeverAssumesAbsent(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)

	backend := newMemoryBackend("100")
	backend.dedupErr = errors.New("connection refused")

	im := newImporter(t, root, backend)
	result := im.Process(context.Background(), scan(t, root)[0])
	if result.Outcome != importer.OutcomeFailed || result.Step != importer.StepDedupCheck {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !errors.Is(result.Err, services.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", result.Err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("create must not run after a failed dedup check")
	}
}

func TestExtractionFailureIsReported(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)
	paths := scan(t, root)
	testsupport.WriteSidecar(t, paths[0], "<broken")

	summary, err := newImporter(t, root, newMemoryBackend("100")).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Imported != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Errors[0].Kind != services.KindExtraction {
		t.Fatalf("expected extraction kind, got %+v", summary.Errors[0])
	}
}

func TestSummaryCapsErrorLines(t *testing.T) {
	root := t.TempDir()
	for i := range 12 {
		testsupport.WriteRecording(t, root, fmt.Sprintf("rec-200-20240101-1000%02d-x.flv", i), 1, time.Time{})
	}

	summary, err := newImporter(t, root, newMemoryBackend("100")).Run(context.Background(), scan(t, root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 12 || len(summary.Errors) != importer.DefaultMaxErrors || summary.ErrorsOmitted != 2 {
		t.Fatalf("unexpected summary: failed=%d errors=%d omitted=%d", summary.Failed, len(summary.Errors), summary.ErrorsOmitted)
	}
}

type cancellingExtractor struct {
	inner  importer.Extractor
	cancel context.CancelFunc
}

func (e cancellingExtractor) Extract(path string) (recording.Candidate, error) {
	e.cancel()
	return e.inner.Extract(path)
}

func TestCancellationBetweenFiles(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root)
	backend := newMemoryBackend("100")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	extractor := cancellingExtractor{inner: newExtractor(t, root), cancel: cancel}
	im, err := importer.New(extractor, backend, importer.Options{}, nil)
	if err != nil {
		t.Fatalf("importer.New: %v", err)
	}

	summary, err := im.Run(ctx, scan(t, root))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Total != 1 || summary.Imported != 1 {
		t.Fatalf("expected the in-flight file to finish, got %+v", summary)
	}
}
