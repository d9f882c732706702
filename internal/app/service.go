// Package service provides the core business service that drives sync runs
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/dedupe"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/mapper"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/upsert"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/metrics"
)

// defaultWriteDelay paces target writes so bulk runs stay inside the CRM's
// rate limits.
const defaultWriteDelay = 300 * time.Millisecond

// SourceClient fetches records from the gym platform for one club and kind.
type SourceClient interface {
	FetchRecords(ctx context.Context, club model.ClubContext, kind model.RecordKind, win window.Window) ([]model.SourceRecord, model.FetchStats, error)
}

// Limiter gates target writes. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Service implements the sync run loop: for each configured club and record
// kind it fetches, maps, and reconciles records against the target CRM.
type Service struct {
	mu sync.RWMutex

	// Core components
	source    SourceClient
	directory upsert.Directory
	engine    *upsert.Engine
	limiter   Limiter

	// Configuration
	clubs      []model.ClubContext
	kinds      []model.RecordKind
	fields     mapper.FieldMap
	actionTags map[string]string
	writeDelay time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSourceClient sets the gym-platform client records are fetched from.
func WithSourceClient(c SourceClient) Option {
	return func(s *Service) {
		if c != nil {
			s.source = c
		}
	}
}

// WithDirectory sets the target CRM surface records are reconciled against.
func WithDirectory(d upsert.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithClubs sets the clubs a run iterates, in order.
func WithClubs(clubs []model.ClubContext) Option {
	return func(s *Service) {
		s.clubs = clubs
	}
}

// WithKinds sets the record kinds a run covers.
func WithKinds(kinds []model.RecordKind) Option {
	return func(s *Service) {
		if len(kinds) > 0 {
			s.kinds = kinds
		}
	}
}

// WithFieldMap sets the custom-field vocabulary used by the mapper.
func WithFieldMap(fields mapper.FieldMap) Option {
	return func(s *Service) {
		if len(fields) > 0 {
			s.fields = fields
		}
	}
}

// WithActionTags sets the per-kind tag vocabulary.
func WithActionTags(tags map[string]string) Option {
	return func(s *Service) {
		if len(tags) > 0 {
			s.actionTags = tags
		}
	}
}

// WithWriteDelay sets the pacing delay between target writes.
func WithWriteDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.writeDelay = d
		}
	}
}

// WithLimiter replaces the write limiter entirely.
func WithLimiter(l Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		kinds:      model.AllKinds(),
		fields:     mapper.DefaultFieldMap(),
		writeDelay: defaultWriteDelay,
		actionTags: map[string]string{
			string(model.KindMembers):          "sale",
			string(model.KindCancelled):        "cancelled / past member",
			string(model.KindPastDue):          "past due",
			string(model.KindServices):         "pt current",
			string(model.KindInactiveServices): "pt cancelled",
		},
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates dependencies and wires the upsert engine and write limiter.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.source == nil {
		return ErrNoSourceClient
	}
	if s.directory == nil {
		return ErrNoDirectory
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.engine = upsert.New(s.directory, upsert.WithLogger(s.logger.Named("upsert")))

	if s.limiter == nil {
		if s.writeDelay > 0 {
			s.limiter = rate.NewLimiter(rate.Every(s.writeDelay), 1)
		} else {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}

	s.started = true
	s.logger.Info(ctx, "sync service started",
		logger.Int("clubs", len(s.clubs)),
		logger.Int("kinds", len(s.kinds)),
		logger.Any("writeDelay", s.writeDelay.String()),
	)

	return nil
}

// Stop marks the service stopped. Runs in flight finish on their own context.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "sync service stopped")
}

// RunBatch fetches, maps, and reconciles one (club, kind) pass. Per-record
// failures are counted in the result; only a failed fetch returns an error.
func (s *Service) RunBatch(ctx context.Context, club model.ClubContext, kind model.RecordKind, win window.Window) (model.BatchResult, error) {
	return s.runBatch(ctx, club, kind, win, dedupe.NewRegistry())
}

func (s *Service) runBatch(ctx context.Context, club model.ClubContext, kind model.RecordKind, win window.Window, seen *dedupe.Registry) (model.BatchResult, error) {
	batch := model.BatchResult{Club: club.Number, Kind: kind}

	records, stats, err := s.source.FetchRecords(ctx, club, kind, win)
	if err != nil {
		return batch, fmt.Errorf("fetch %s for club %s: %w", kind, club.Number, err)
	}
	batch.Truncated = stats.Truncated

	// Exclusion-filtered records never reach the target; they still show up
	// in the batch as skipped so counts reconcile against the source.
	for _, id := range stats.Excluded {
		batch.Add(model.RecordResult{
			MemberID: id,
			Outcome:  model.OutcomeSkipped,
			Reason:   model.ReasonExcludedType,
		})
		metrics.RecordSyncOutcome(string(kind), string(model.OutcomeSkipped))
	}

	tag := s.actionTags[string(kind)]

	for _, rec := range records {
		draft, err := mapper.ToDraft(rec, tag, club, s.fields)
		if err != nil {
			res := model.RecordResult{
				MemberID: rec.MemberID,
				Email:    rec.Email,
				Outcome:  model.OutcomeError,
				Reason:   err.Error(),
			}
			batch.Add(res)
			metrics.RecordSyncOutcome(string(kind), string(model.OutcomeError))
			continue
		}

		// The same email can legally show up more than once in a run; the
		// upsert path is idempotent, so note it and keep going.
		if seen.SeenAndRecord(club.Number, draft.Email) {
			s.logger.Debug(ctx, "email already reconciled this run",
				logger.String("club", club.Number),
				logger.String("email", draft.Email),
			)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			res := model.RecordResult{
				MemberID: rec.MemberID,
				Email:    rec.Email,
				Outcome:  model.OutcomeError,
				Reason:   fmt.Sprintf("run canceled: %v", err),
			}
			batch.Add(res)
			metrics.RecordSyncOutcome(string(kind), string(model.OutcomeError))
			break
		}

		res := s.engine.Upsert(ctx, club, rec.MemberID, draft)
		batch.Add(res)
		metrics.RecordSyncOutcome(string(kind), string(res.Outcome))
	}

	s.logger.Info(ctx, "batch finished",
		logger.String("club", club.Number),
		logger.String("kind", string(kind)),
		logger.Int("created", batch.Created),
		logger.Int("updated", batch.Updated),
		logger.Int("alreadyTagged", batch.Tagged),
		logger.Int("skipped", batch.Skipped),
		logger.Int("errors", batch.Errors),
		logger.Any("truncated", batch.Truncated),
	)

	return batch, nil
}

// RunAll runs every configured (club, kind) pair sequentially under one run
// ID. A failed fetch records a batch failure and the run keeps going; the
// error return is reserved for a nil window with no clubs configured.
func (s *Service) RunAll(ctx context.Context, win window.Window) (model.RunResult, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return model.RunResult{}, ErrNotStarted
	}
	clubs, kinds := s.clubs, s.kinds
	s.mu.RUnlock()

	run := model.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	seen := dedupe.NewRegistry()

	s.logger.Info(ctx, "run started",
		logger.String("runID", run.RunID),
		logger.String("windowStart", win.Start),
		logger.String("windowEnd", win.End),
	)

	for _, club := range clubs {
		for _, kind := range kinds {
			batch, err := s.runBatch(ctx, club, kind, win, seen)
			if err != nil {
				run.Failures = append(run.Failures, model.BatchFailure{
					Club:   club.Number,
					Kind:   kind,
					Reason: err.Error(),
				})
				metrics.RecordBatchFailure()
				s.logger.Error(ctx, "batch failed",
					logger.String("runID", run.RunID),
					logger.String("club", club.Number),
					logger.String("kind", string(kind)),
					logger.Error(err),
				)
				continue
			}
			run.Batches = append(run.Batches, batch)
		}
	}

	run.FinishedAt = time.Now().UTC()
	metrics.RecordRun(float64(run.FinishedAt.Sub(run.StartedAt).Milliseconds()))

	s.logger.Info(ctx, "run finished",
		logger.String("runID", run.RunID),
		logger.Int("batches", len(run.Batches)),
		logger.Int("failures", len(run.Failures)),
		logger.Int("emails", seen.Size()),
	)

	return run, nil
}

// Clubs returns the configured club list.
func (s *Service) Clubs() []model.ClubContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clubs
}

// Kinds returns the configured record kinds.
func (s *Service) Kinds() []model.RecordKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kinds
}
