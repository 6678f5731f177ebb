// ABOUTME: Batch recomputation of the cross-technology pattern link index
// ABOUTME: Runs on a cron schedule, backfills missing embeddings, and swaps the index atomically

package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

// backfillBatch caps how many missing embeddings one recompute run repairs.
const backfillBatch = 64

// Linker rebuilds the pattern link index from store snapshots. Retrieval
// keeps serving the previous set while a rebuild runs.
type Linker struct {
	store     *storage.Storage
	embedder  Embedder
	threshold float64
	interval  time.Duration

	cron *cron.Cron
}

// NewLinker builds a linker from engine configuration. The embedder may be
// nil; backfill is skipped then.
func NewLinker(store *storage.Storage, embedder Embedder, cfg *config.Config) *Linker {
	return &Linker{
		store:     store,
		embedder:  embedder,
		threshold: cfg.LinkThreshold,
		interval:  cfg.RecomputeInterval,
	}
}

// Start schedules periodic recomputation. Overlapping runs are skipped.
func (l *Linker) Start() error {
	if l.cron != nil {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc("@every "+l.interval.String(), func() {
		if _, err := l.Recompute(context.Background()); err != nil {
			log.Printf("[Linker] scheduled recompute failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule link recompute: %w", err)
	}

	c.Start()
	l.cron = c
	log.Printf("[Linker] recompute scheduled every %s", l.interval)
	return nil
}

// Stop halts the schedule and returns a context that closes once any
// in-flight run finishes.
func (l *Linker) Stop() context.Context {
	if l.cron == nil {
		done, cancel := context.WithCancel(context.Background())
		cancel()
		return done
	}
	return l.cron.Stop()
}

// Recompute rebuilds the entire link index. It is idempotent and safe to
// abort; the previous index stays live until the new one commits.
func (l *Linker) Recompute(ctx context.Context) (int, error) {
	start := time.Now()
	l.backfillEmbeddings(ctx)

	var links []models.PatternLink
	computedAt := time.Now().UTC()

	for _, kind := range []models.Kind{models.KindCodePattern, models.KindAntiPattern} {
		items, err := l.store.Items().ListKind(kind)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s items: %w", kind, err)
		}

		kindLinks, err := l.linkItems(ctx, items, computedAt)
		if err != nil {
			return 0, err
		}
		links = append(links, kindLinks...)
	}

	if err := l.store.Links().ReplaceAll(links); err != nil {
		return 0, fmt.Errorf("failed to replace link index: %w", err)
	}

	log.Printf("[Linker] recomputed %d links in %s", len(links), time.Since(start).Round(time.Millisecond))
	return len(links), nil
}

// linkItems pairs same-kind items and emits a link for every technology the
// target carries that the source lacks, when similarity clears the
// threshold.
func (l *Linker) linkItems(ctx context.Context, items []models.ContextItem, computedAt time.Time) ([]models.PatternLink, error) {
	var links []models.PatternLink
	seen := make(map[string]bool)

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("link recompute aborted: %w", err)
		}

		source := &items[i]
		if source.Embedding == nil {
			continue
		}

		for j := range items {
			if i == j {
				continue
			}
			target := &items[j]
			if target.Embedding == nil {
				continue
			}

			sim := storage.CosineSimilarity(source.Embedding, target.Embedding)
			if sim < l.threshold {
				continue
			}

			for _, tech := range target.TechnologyTags {
				if source.HasTag(tech) {
					continue
				}
				key := source.ID + "\x00" + tech + "\x00" + target.ID
				if seen[key] {
					continue
				}
				seen[key] = true

				links = append(links, models.PatternLink{
					SourcePatternID:    source.ID,
					TargetTechnology:   tech,
					TargetItemID:       target.ID,
					AdaptedContent:     adaptContent(source.Content, tech),
					Similarity:         sim,
					AdaptationCost:     1 - sim,
					SuccessProbability: sim * models.Neutral.Float(),
					ComputedAt:         computedAt,
				})
			}
		}
	}

	return links, nil
}

// backfillEmbeddings repairs items stored while the embedding provider was
// unavailable. Failures are logged and skipped; the items stay eligible for
// the next run.
func (l *Linker) backfillEmbeddings(ctx context.Context) {
	if l.embedder == nil {
		return
	}

	missing, err := l.store.Items().MissingEmbeddings(backfillBatch)
	if err != nil {
		log.Printf("[Linker] failed to list items missing embeddings: %v", err)
		return
	}

	for i := range missing {
		item := &missing[i]
		vector, err := l.embedder.Embed(ctx, item.Content)
		if err != nil {
			log.Printf("[Linker] backfill embed failed for %s: %v", item.ID, err)
			continue
		}
		if err := l.store.Items().UpdateEmbedding(item.ID, vector); err != nil {
			log.Printf("[Linker] backfill update failed for %s: %v", item.ID, err)
		}
	}
}

// adaptContent annotates pattern content for reuse under a different
// technology. The linker records the translation target; rewriting the
// pattern itself is left to the consuming host.
func adaptContent(content, targetTech string) string {
	return fmt.Sprintf("[adapt to %s] %s", targetTech, content)
}
