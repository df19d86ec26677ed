package recording

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"brecimport/internal/services"
)

// Metadata modes understood by the extractor.
const (
	ModeSidecar  = "sidecar"
	ModeFilename = "filename"
)

const stageExtract = "extract"

// Options configure an Extractor.
type Options struct {
	Mode          string
	SidecarExt    string
	ScanRoot      string
	ContainerRoot string
	Location      *time.Location
}

// Extractor derives candidates from recording paths.
type Extractor struct {
	mode       string
	sidecarExt string
	scanRoot   string
	// resolvedRoot is scanRoot with symlinks evaluated.
	resolvedRoot  string
	containerRoot string
	location      *time.Location
}

// NewExtractor validates options and resolves the scan root to an absolute path.
func NewExtractor(opts Options) (*Extractor, error) {
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = ModeSidecar
	}
	if mode != ModeSidecar && mode != ModeFilename {
		return nil, fmt.Errorf("unsupported metadata mode %q", opts.Mode)
	}
	if strings.TrimSpace(opts.ScanRoot) == "" {
		return nil, errors.New("scan root is required")
	}
	root, err := filepath.Abs(opts.ScanRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	root = filepath.Clean(root)
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		resolved = root
	}
	sidecarExt := opts.SidecarExt
	if sidecarExt == "" {
		sidecarExt = ".xml"
	}
	containerRoot := strings.TrimSpace(opts.ContainerRoot)
	if containerRoot != "" {
		containerRoot = path.Clean(containerRoot)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{
		mode:          mode,
		sidecarExt:    sidecarExt,
		scanRoot:      root,
		resolvedRoot:  resolved,
		containerRoot: containerRoot,
		location:      loc,
	}, nil
}

// Extract builds the candidate for one recording. Every failure is tagged
// services.ErrExtraction.
func (e *Extractor) Extract(sourcePath string) (Candidate, error) {
	absPath, err := filepath.Abs(sourcePath)
	if err != nil {
		return Candidate{}, services.Wrap(services.ErrExtraction, stageExtract, "resolve path", sourcePath, err)
	}
	stat, err := os.Stat(absPath)
	if err != nil {
		return Candidate{}, services.Wrap(services.ErrExtraction, stageExtract, "stat recording", absPath, err)
	}
	if !stat.Mode().IsRegular() {
		return Candidate{}, services.Wrap(services.ErrExtraction, stageExtract, "stat recording", absPath+" is not a regular file", nil)
	}
	containerPath, err := e.ContainerPath(absPath)
	if err != nil {
		return Candidate{}, services.Wrap(services.ErrExtraction, stageExtract, "map container path", absPath, err)
	}

	fromName := parseFilename(absPath, stat.ModTime().In(e.location), e.location)
	candidate := Candidate{
		RoomID:        fromName.roomID,
		Title:         fromName.title,
		StartTime:     fromName.startTime,
		EndTime:       fromName.endTime,
		SourcePath:    absPath,
		ContainerPath: containerPath,
		FileName:      filepath.Base(absPath),
		SizeBytes:     stat.Size(),
		Source:        SourceFilename,
	}
	bucket := DayBucket(candidate.StartTime)
	sessionID := ""

	if e.mode == ModeSidecar {
		sidecar, found, err := e.loadSidecar(absPath)
		if err != nil {
			return Candidate{}, services.Wrap(services.ErrExtraction, stageExtract, "read sidecar", absPath, err)
		}
		if found {
			candidate.Source = SourceSidecar
			applySidecar(&candidate, sidecar)
			switch {
			case sidecar.StartTime.IsZero():
			case sidecar.RecordInfoStart:
				bucket = DayBucket(sidecar.StartTime.In(e.location))
			default:
				bucket = SecondBucket(sidecar.StartTime)
			}
			sessionID = sidecar.SessionID
		}
	}

	candidate.Title = normalizeText(candidate.Title)
	candidate.DisplayName = normalizeText(candidate.DisplayName)
	candidate.AreaParent = normalizeText(candidate.AreaParent)
	candidate.AreaChild = normalizeText(candidate.AreaChild)
	if candidate.DisplayName == "" {
		candidate.DisplayName = "房间" + candidate.RoomID
	}
	if sessionID != "" {
		candidate.SessionKey = sessionID
	} else {
		candidate.SessionKey = DeriveSessionKey(candidate.RoomID, bucket)
	}
	return candidate, nil
}

// ContainerPath rewrites a path under the scan root to the container root.
// Paths under the symlink-resolved root are accepted too. With no container
// root the host path is kept. The result always uses forward slashes.
func (e *Extractor) ContainerPath(absPath string) (string, error) {
	rel, ok := relativeTo(e.scanRoot, absPath)
	if !ok {
		rel, ok = relativeTo(e.resolvedRoot, absPath)
	}
	if !ok {
		return "", fmt.Errorf("%s is outside scan root %s", absPath, e.scanRoot)
	}
	if e.containerRoot == "" {
		return filepath.ToSlash(absPath), nil
	}
	return path.Join(e.containerRoot, filepath.ToSlash(rel)), nil
}

func relativeTo(root, absPath string) (string, bool) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func (e *Extractor) loadSidecar(videoPath string) (sidecarInfo, bool, error) {
	sidecarPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + e.sidecarExt
	if _, err := os.Stat(sidecarPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sidecarInfo{}, false, nil
		}
		return sidecarInfo{}, false, err
	}
	info, err := readSidecar(sidecarPath)
	if err != nil {
		return sidecarInfo{}, true, err
	}
	return info, true, nil
}

// applySidecar overlays every field the sidecar carries onto the filename fallback.
func applySidecar(c *Candidate, s sidecarInfo) {
	if s.RoomID != "" {
		c.RoomID = s.RoomID
	}
	if s.ShortID != "" {
		c.ShortID = s.ShortID
	}
	if s.Name != "" {
		c.DisplayName = s.Name
	}
	if s.Title != "" {
		c.Title = s.Title
	}
	if s.AreaParent != "" {
		c.AreaParent = s.AreaParent
	}
	if s.AreaChild != "" {
		c.AreaChild = s.AreaChild
	}
	if !s.StartTime.IsZero() {
		c.StartTime = s.StartTime
	}
	if !s.EndTime.IsZero() {
		c.EndTime = s.EndTime
	}
}

func normalizeText(value string) string {
	return strings.TrimSpace(norm.NFC.String(value))
}
