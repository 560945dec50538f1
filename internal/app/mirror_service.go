package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/metrics"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// SavedQuery is a named filter the mirror polls one page of per run.
type SavedQuery struct {
	Name   string
	Filter domain.ItemFilter
}

// MirrorService keeps a local copy of the items matched by each saved query
// and publishes the ones whose content changed.
type MirrorService struct {
	repo          domain.Repository
	source        domain.ItemSource
	eventProducer domain.EventProducer
	queries       []SavedQuery
	interval      time.Duration
	workerCount   int
	policy        *bluemonday.Policy
	jobs          chan job
	wg            sync.WaitGroup
	activeQueries sync.Map
}

type job struct {
	query SavedQuery
}

func NewMirrorService(
	repo domain.Repository,
	source domain.ItemSource,
	eventProducer domain.EventProducer,
	queries []SavedQuery,
	interval time.Duration,
	workerCount int,
) *MirrorService {
	return &MirrorService{
		repo:          repo,
		source:        source,
		eventProducer: eventProducer,
		queries:       queries,
		interval:      interval,
		workerCount:   workerCount,
		policy:        bluemonday.UGCPolicy(),
		jobs:          make(chan job, workerCount*2),
	}
}

// Start runs the workers and one ticker loop per query until ctx is done.
func (s *MirrorService) Start(ctx context.Context) {
	slog.Info("Starting mirror service", "interval", s.interval, "workers", s.workerCount, "queries", len(s.queries))

	if last, err := s.repo.GetLastUpdated(ctx); err != nil {
		slog.Warn("Could not read mirror state", "error", err)
	} else if last != nil {
		slog.Info("Resuming mirror", "last_item_id", last.ID, "last_updated_at", last.UpdatedAt)
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	var loopsWg sync.WaitGroup
	for _, q := range s.queries {
		slog.Info("Starting query loop", "query", q.Name)
		loopsWg.Add(1)
		go s.runQueryLoop(ctx, q, &loopsWg)
	}

	<-ctx.Done()
	slog.Info("Context cancelled, stopping mirror service...")

	loopsWg.Wait()
	close(s.jobs)

	s.wg.Wait()
	slog.Info("All workers stopped")
}

func (s *MirrorService) runQueryLoop(ctx context.Context, q SavedQuery, wg *sync.WaitGroup) {
	defer wg.Done()

	select {
	case s.jobs <- job{query: q}:
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case s.jobs <- job{query: q}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *MirrorService) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	slog.Info("Worker started", "worker_id", id)

	for j := range s.jobs {
		name := j.query.Name
		if _, loaded := s.activeQueries.LoadOrStore(name, true); loaded {
			slog.Warn("Skipping concurrent run", "query", name, "worker_id", id)
			continue
		}

		metrics.WorkerActiveCount.Inc()
		func() {
			defer s.activeQueries.Delete(name)
			if err := s.RunQuery(ctx, j.query); err != nil {
				slog.Error("Mirror run failed", "query", name, "error", err)
			}
		}()
		metrics.WorkerActiveCount.Dec()
	}
	slog.Info("Worker stopped", "worker_id", id)
}

// RunQuery fetches one page for q and mirrors it.
func (s *MirrorService) RunQuery(ctx context.Context, q SavedQuery) error {
	ctx, span := otel.Tracer("read-later-sync").Start(ctx, "RunQuery")
	defer span.End()

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("query", q.Name), attribute.String("run_id", runID))
	logger := slog.With("query", q.Name, "run_id", runID)

	start := time.Now()
	defer func() {
		metrics.MirrorRunDuration.WithLabelValues(q.Name).Observe(time.Since(start).Seconds())
	}()

	coll, err := s.source.GetItemsWithMetadata(ctx, q.Filter.Options()...)
	if err != nil {
		span.RecordError(err)
		metrics.ItemsFetched.WithLabelValues(q.Name, "error").Inc()
		return fmt.Errorf("failed to fetch items: %w", err)
	}
	if coll == nil {
		logger.Warn("API returned no collection")
		return nil
	}

	logger.Info("Fetched page",
		"page", coll.Page,
		"pages", coll.Pages,
		"total", coll.Total,
		"items_on_page", len(coll.Items()))

	if err := s.processBatch(ctx, logger, q, coll.Items()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *MirrorService) processBatch(ctx context.Context, logger *slog.Logger, q SavedQuery, fetched []domain.Item) error {
	items := lo.UniqBy(fetched, func(i domain.Item) int { return i.ID })
	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].Content = s.policy.Sanitize(items[i].Content)
		items[i].ContentHash = items[i].ComputeHash()
	}
	metrics.ItemsFetched.WithLabelValues(q.Name, "success").Add(float64(len(items)))

	ids := lo.Map(items, func(i domain.Item, _ int) int { return i.ID })
	existing, err := s.repo.GetContentHashes(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch hashes: %w", err)
	}

	changed := lo.Filter(items, func(i domain.Item, _ int) bool {
		old, ok := existing[i.ID]
		return !ok || old != i.ContentHash
	})
	if skipped := len(items) - len(changed); skipped > 0 {
		metrics.ItemsUnchangedSkipped.WithLabelValues(q.Name).Add(float64(skipped))
	}

	if err := s.repo.BulkUpsert(ctx, items); err != nil {
		return fmt.Errorf("bulk upsert failed: %w", err)
	}

	if len(changed) == 0 {
		return nil
	}

	logger.Info("Publishing changed items", "count", len(changed))
	if err := s.eventProducer.PublishBatch(ctx, changed); err != nil {
		// Mirror is already up to date; the next change will be published.
		logger.Error("Error publishing item batch", "count", len(changed), "error", err)
		metrics.PublishErrors.WithLabelValues(q.Name).Inc()
		return nil
	}
	metrics.ItemsPublished.WithLabelValues(q.Name).Add(float64(len(changed)))
	return nil
}
