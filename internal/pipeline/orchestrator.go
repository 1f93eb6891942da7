package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/logger"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Independent random streams derived from the configured seed
const (
	entityStream    uint64 = 1
	syntheticStream uint64 = 2
)

// Sources opens the named input files of a run
type Sources interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithMetrics records runs and rows in m
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithProgress reports every processed row to fn
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithBcryptCost sets the cost used to hash placeholder credentials
func WithBcryptCost(cost int) Option {
	return func(o *Orchestrator) { o.bcryptCost = cost }
}

// Orchestrator runs purge-then-repopulate: it empties the store and then
// imports the catalog, the roster, the synthetic leads and the sales, in that
// order. Only one run may be active at a time.
type Orchestrator struct {
	store      *repository.Store
	sources    Sources
	cfg        config.PipelineConfig
	logger     *zap.Logger
	metrics    *Metrics
	progress   ProgressFunc
	now        func() time.Time
	bcryptCost int

	running sync.Mutex

	mu         sync.RWMutex
	state      State
	lastReport *Report
}

func NewOrchestrator(store *repository.Store, sources Sources, cfg config.PipelineConfig, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		sources:    sources,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state of the orchestrator
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// LastReport returns the report of the most recent finished run, if any
func (o *Orchestrator) LastReport() *Report {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastReport
}

func (o *Orchestrator) setState(report *Report, state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
	report.State = state
}

// Run executes one full cycle. trigger names the caller (cli, api, schedule)
// for the logs. The returned report is never nil; on failure its State is
// StateFailed and the error says why.
func (o *Orchestrator) Run(ctx context.Context, trigger string) (*Report, error) {
	if !o.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.running.Unlock()

	report := &Report{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: o.now(),
	}
	log := logger.WithRun(o.logger, report.RunID, trigger)
	log.Info("Pipeline run started")

	// Sources are read before anything is deleted, so a bad file leaves the store intact
	o.setState(report, StateLoadingSources)
	catalog, roster, sales, err := o.loadSources(ctx)
	if err != nil {
		return o.fail(log, report, err)
	}

	o.setState(report, StatePurging)
	purged, err := o.store.Purge(ctx)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("%w: %w", ErrPurgeFailed, err))
	}
	report.Purged = purged
	log.Info("Store purged", zap.Any("deleted", purged))

	staffHash, err := bcrypt.GenerateFromPassword([]byte(DefaultStaffCredential), o.bcryptCost)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("failed to hash staff credential: %w", err))
	}
	systemHash, err := bcrypt.GenerateFromPassword([]byte(SentinelCredential), o.bcryptCost)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("failed to hash system credential: %w", err))
	}

	deps := StageDeps{Store: o.store, Logger: log, Metrics: o.metrics, Progress: o.progress}
	seed := o.cfg.Seed

	o.setState(report, StateImportingCatalog)
	stage, err := NewCatalogImporter(deps).Import(ctx, catalog)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("catalog import: %w", err))
	}
	report.Stages = append(report.Stages, stage)

	o.setState(report, StateImportingEntities)
	entityRNG := rand.New(rand.NewPCG(seed, entityStream))
	stage, err = NewEntityImporter(deps, entityRNG, string(staffHash)).Import(ctx, roster)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("entity import: %w", err))
	}
	report.Stages = append(report.Stages, stage)

	o.setState(report, StateGeneratingSynthetic)
	syntheticRNG := rand.New(rand.NewPCG(seed, syntheticStream))
	stage, err = NewSyntheticAugmentor(deps, syntheticRNG, seededEntropy(seed), o.now).Generate(ctx)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("synthetic generation: %w", err))
	}
	report.Stages = append(report.Stages, stage)

	o.setState(report, StateImportingSales)
	stage, err = NewSalesLinker(deps, string(systemHash), report.StartedAt).Import(ctx, sales)
	if err != nil {
		return o.fail(log, report, fmt.Errorf("sales import: %w", err))
	}
	report.Stages = append(report.Stages, stage)

	o.setState(report, StateDone)
	o.finish(report)
	log.Info("Pipeline run completed",
		zap.Duration("duration", report.Duration()),
		zap.Int("skipped", report.TotalSkipped()),
	)
	return report, nil
}

func (o *Orchestrator) fail(log *zap.Logger, report *Report, err error) (*Report, error) {
	o.setState(report, StateFailed)
	report.Error = err.Error()
	o.finish(report)
	log.Error("Pipeline run failed", zap.Error(err))
	return report, err
}

func (o *Orchestrator) finish(report *Report) {
	report.FinishedAt = o.now()
	o.metrics.runFinished(report.State, report.Duration())
	o.mu.Lock()
	o.lastReport = report
	o.mu.Unlock()
}

func (o *Orchestrator) loadSources(ctx context.Context) (catalog, roster, sales *source.Table, err error) {
	if catalog, err = o.readTable(ctx, o.cfg.CatalogFile, source.CatalogSchema); err != nil {
		return nil, nil, nil, err
	}
	if roster, err = o.readTable(ctx, o.cfg.RosterFile, source.RosterSchema); err != nil {
		return nil, nil, nil, err
	}
	if sales, err = o.readTable(ctx, o.cfg.SalesFile, source.SalesSchema); err != nil {
		return nil, nil, nil, err
	}
	return catalog, roster, sales, nil
}

func (o *Orchestrator) readTable(ctx context.Context, name string, schema source.Schema) (*source.Table, error) {
	rc, err := o.sources.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", schema.Kind, err)
	}
	defer rc.Close()

	table, err := source.Read(rc, source.FormatFromName(name), schema, source.Options{Delimiter: o.cfg.Delimiter})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return table, nil
}

// seededEntropy derives a deterministic byte stream from the seed
func seededEntropy(seed uint64) io.Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	binary.LittleEndian.PutUint64(key[8:], syntheticStream)
	return rand.NewChaCha8(key)
}
