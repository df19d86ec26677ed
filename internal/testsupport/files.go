package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteRecording creates a fake recording at root/rel and stamps its mtime.
// It returns the absolute path.
func WriteRecording(t testing.TB, root, rel string, size int64, modTime time.Time) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	WriteFile(t, path, size)
	if !modTime.IsZero() {
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
	return path
}

// WriteSidecar writes raw XML next to a recording, replacing its extension.
func WriteSidecar(t testing.TB, videoPath, content string) string {
	t.Helper()

	path := videoPath[:len(videoPath)-len(filepath.Ext(videoPath))] + ".xml"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sidecar %s: %v", path, err)
	}
	return path
}
