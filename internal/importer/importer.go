package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"brecimport/internal/catalog"
	"brecimport/internal/logging"
	"brecimport/internal/recording"
	"brecimport/internal/services"
)

// Extractor turns a recording path into a candidate.
type Extractor interface {
	Extract(path string) (recording.Candidate, error)
}

// Options tune per-call timeouts and summary size.
type Options struct {
	CheckTimeout  time.Duration
	CreateTimeout time.Duration
	MaxErrors     int
}

// Importer drives files through the reconciliation steps.
type Importer struct {
	extractor Extractor
	backend   catalog.Backend
	opts      Options
	logger    *slog.Logger
	// selfTimed backends bound each request themselves.
	selfTimed bool
}

// New constructs an importer. The caller owns backend and closes it.
func New(extractor Extractor, backend catalog.Backend, opts Options, logger *slog.Logger) (*Importer, error) {
	if extractor == nil || backend == nil {
		return nil, errors.New("importer requires an extractor and a backend")
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = 10 * time.Second
	}
	if opts.CreateTimeout <= 0 {
		opts.CreateTimeout = 30 * time.Second
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &Importer{
		extractor: extractor,
		backend:   backend,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "importer"),
		selfTimed: catalog.BoundsOwnCalls(backend),
	}, nil
}

// Run processes paths in lexicographic order. Cancellation is honoured only
// between files; the summary so far is returned with ctx.Err().
func (im *Importer) Run(ctx context.Context, paths []string) (Summary, error) {
	ordered := append([]string(nil), paths...)
	sort.Strings(ordered)

	var summary Summary
	logging.WithContext(ctx, im.logger).Info("import started", logging.Int("files", len(ordered)))
	for _, path := range ordered {
		if err := ctx.Err(); err != nil {
			logging.WithContext(ctx, im.logger).Warn("import interrupted",
				logging.Int("processed", summary.Total),
				logging.Int("remaining", len(ordered)-summary.Total),
			)
			return summary, err
		}
		result := im.Process(ctx, path)
		summary.record(result, im.opts.MaxErrors)
	}
	logging.WithContext(ctx, im.logger).Info("import finished",
		logging.Int("total", summary.Total),
		logging.Int("imported", summary.Imported),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Process runs one file to a terminal state. The file is not abandoned when
// ctx is cancelled part way through; only the per-call timeouts bound it.
func (im *Importer) Process(ctx context.Context, path string) FileResult {
	ctx = services.WithFile(context.WithoutCancel(ctx), path)
	result := im.process(ctx, path)
	im.logResult(ctx, result)
	return result
}

func (im *Importer) process(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path, Step: StepExtract}
	fail := func(err error) FileResult {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	candidate, err := im.extractor.Extract(path)
	if err != nil {
		if services.Classify(err) == services.KindUnknown {
			err = services.Wrap(services.ErrExtraction, StepExtract, "", path, err)
		}
		return fail(err)
	}
	result.SessionKey = candidate.SessionKey
	ctx = services.WithSessionKey(ctx, candidate.SessionKey)

	result.Step = StepRoomCheck
	registered, err := im.check(ctx, func(ctx context.Context) (bool, error) {
		return im.backend.RoomExists(ctx, candidate.RoomID)
	})
	if err != nil {
		return fail(services.Wrap(services.ErrPersist, StepRoomCheck, "lookup room", candidate.RoomID, err))
	}
	if !registered {
		return fail(services.Wrap(services.ErrRoomNotRegistered, StepRoomCheck, "",
			fmt.Sprintf("room %s is not registered; add it in the web UI first", candidate.RoomID), nil))
	}

	result.Step = StepDedupCheck
	exists, err := im.check(ctx, func(ctx context.Context) (bool, error) {
		return im.backend.PartExists(ctx, candidate.ContainerPath)
	})
	if err != nil {
		return fail(services.Wrap(services.ErrPersist, StepDedupCheck, "lookup part", candidate.ContainerPath, err))
	}
	if exists {
		result.Outcome = OutcomeSkipped
		return result
	}

	writeCtx, cancel := im.bound(ctx, im.opts.CreateTimeout)
	defer cancel()
	err = catalog.WithinFile(writeCtx, im.backend, func(w catalog.Writer) error {
		result.Step = StepSessionResolve
		ref, err := w.ResolveOrCreateSession(services.WithStage(writeCtx, StepSessionResolve), candidate)
		if err != nil {
			return services.Wrap(services.ErrPersist, StepSessionResolve, "", candidate.SessionKey, err)
		}
		result.Step = StepPartCreate
		if err := w.CreatePart(services.WithStage(writeCtx, StepPartCreate), ref, candidate); err != nil {
			return services.Wrap(services.ErrPersist, StepPartCreate, "", candidate.ContainerPath, err)
		}
		return nil
	})
	if err != nil {
		if services.Classify(err) == services.KindUnknown {
			err = services.Wrap(services.ErrPersist, result.Step, "", "", err)
		}
		return fail(err)
	}
	result.Outcome = OutcomeImported
	return result
}

func (im *Importer) check(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	ctx, cancel := im.bound(ctx, im.opts.CheckTimeout)
	defer cancel()
	return fn(ctx)
}

// bound applies timeout unless the backend already limits each request.
func (im *Importer) bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if im.selfTimed {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (im *Importer) logResult(ctx context.Context, result FileResult) {
	ctx = services.WithStage(ctx, result.Step)
	if result.SessionKey != "" {
		ctx = services.WithSessionKey(ctx, result.SessionKey)
	}
	logger := logging.WithContext(ctx, im.logger)
	switch result.Outcome {
	case OutcomeImported:
		logger.Info("imported")
	case OutcomeSkipped:
		logger.Info("skipped, already imported")
	default:
		logger.Warn("failed",
			logging.String(logging.FieldErrorKind, services.Classify(result.Err)),
			logging.Error(result.Err),
		)
	}
}
