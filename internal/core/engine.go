// ABOUTME: Engine facade wiring storage, ranking, profiles, transfer, and budgeting
// ABOUTME: Exposes the full operation surface consumed by the MCP server and the CLI

package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

// defaultRetrieveLimit bounds retrieval when the caller does not pick a k.
const defaultRetrieveLimit = 10

// candidateOverscan widens the storage scan so ranking has room to reorder
// beyond raw similarity.
const candidateOverscan = 4

// Embedder turns text into a vector. Implementations must be safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Summarizer compresses content to a character limit.
type Summarizer interface {
	Summarize(ctx context.Context, content string, maxChars int) (string, error)
}

// Engine is the single entry point for context intelligence operations.
type Engine struct {
	cfg      *config.Config
	store    *storage.Storage
	embedder Embedder

	ranker   *Ranker
	learner  *ProfileLearner
	transfer *TransferEngine
	linker   *Linker
	budgeter *Budgeter
}

// NewEngine wires an engine. Both collaborators may be nil: without an
// embedder the engine runs in non-semantic mode, without a summarizer
// compression falls back to truncation.
func NewEngine(cfg *config.Config, store *storage.Storage, embedder Embedder, summarizer Summarizer) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		ranker:   NewRanker(cfg),
		learner:  NewProfileLearner(store.Profiles(), cfg),
		transfer: NewTransferEngine(store, cfg),
		linker:   NewLinker(store, embedder, cfg),
		budgeter: NewBudgeter(summarizer),
	}
}

// StoreRequest describes one context item to persist.
type StoreRequest struct {
	ProjectID      string
	DeveloperID    string
	Kind           string
	Content        string
	TechnologyTags []string
	// CreatedAt overrides the item timestamp for historical ingestion.
	CreatedAt time.Time
}

// Store persists a context item, embedding it inline. Storing content that
// already exists in the project is idempotent: the existing item is
// returned together with a DuplicateContentError. An embedding failure
// degrades the item to non-semantic ranking instead of failing the write.
func (e *Engine) Store(ctx context.Context, req StoreRequest) (*models.ContextItem, error) {
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	exists, err := e.store.Projects().Exists(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate project: %w", err)
	}
	if !exists {
		return nil, &InvalidScopeError{ProjectID: req.ProjectID, Reason: "project not registered"}
	}

	hash := models.HashContent(req.Content)
	existing, err := e.store.Items().FindByContentHash(req.ProjectID, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, &DuplicateContentError{ExistingID: existing.ID}
	}

	now := time.Now().UTC()
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	item := &models.ContextItem{
		ID:             newItemID(now),
		ProjectID:      req.ProjectID,
		CreatedBy:      req.DeveloperID,
		Kind:           kind,
		Content:        req.Content,
		ContentHash:    hash,
		TechnologyTags: req.TechnologyTags,
		OutcomeScore:   models.Confidence(e.cfg.InitialOutcomeFor(string(kind))),
		CreatedAt:      createdAt,
		LastAccessedAt: createdAt,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.Embedding = e.embedOrDegrade(ctx, item.ID, req.Content)

	if err := e.store.Items().Put(item); err != nil {
		// A concurrent store of the same content loses the insert race but
		// still resolves to the surviving item.
		if raced, ferr := e.store.Items().FindByContentHash(req.ProjectID, hash); ferr == nil && raced != nil {
			return raced, &DuplicateContentError{ExistingID: raced.ID}
		}
		return nil, err
	}

	if req.DeveloperID != "" && len(req.TechnologyTags) > 0 {
		if err := e.learner.ObserveUsage(req.DeveloperID, req.TechnologyTags, now); err != nil {
			log.Printf("[Engine] usage observation failed for %s: %v", req.DeveloperID, err)
		}
	}

	return item, nil
}

// embedOrDegrade computes an embedding, returning nil (and logging) when the
// provider is unavailable or misconfigured.
func (e *Engine) embedOrDegrade(ctx context.Context, itemID, content string) []float64 {
	if e.embedder == nil {
		return nil
	}

	vector, err := e.embedder.Embed(ctx, content)
	if err != nil {
		log.Printf("[Engine] %v; storing %s without embedding", &EmbeddingUnavailableError{Err: err}, itemID)
		return nil
	}
	if e.cfg.VectorDimension > 0 && len(vector) != e.cfg.VectorDimension {
		log.Printf("[Engine] embedding dimension %d != configured %d; storing %s without embedding",
			len(vector), e.cfg.VectorDimension, itemID)
		return nil
	}
	return vector
}

// RetrieveRequest describes a ranked retrieval.
type RetrieveRequest struct {
	Query        string
	DeveloperID  string
	ProjectID    string
	Technologies []string
	Kinds        []string
	CrossProject bool
	K            int
	// Budget is optional; nil returns the full top-k unfitted.
	Budget *models.Budget
}

// Retrieve ranks stored context for a query and assembles it into a fitted
// context window with anti-pattern warnings. Embedding failure degrades to
// non-semantic ranking; it never fails the call.
func (e *Engine) Retrieve(ctx context.Context, req RetrieveRequest) (*models.FittedContext, error) {
	start := time.Now()

	exists, err := e.store.Projects().Exists(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate project: %w", err)
	}
	if !exists {
		return nil, &InvalidScopeError{ProjectID: req.ProjectID, Reason: "project not registered"}
	}

	kinds := make([]models.Kind, 0, len(req.Kinds))
	for _, s := range req.Kinds {
		kind, err := models.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	k := req.K
	if k <= 0 {
		k = defaultRetrieveLimit
	}

	queryVector, degraded := e.queryVector(ctx, req.Query)

	scanLimit := k * candidateOverscan
	if scanLimit < 50 {
		scanLimit = 50
	}
	candidates, err := e.store.Items().Candidates(queryVector, storage.CandidateScope{
		ProjectID:    req.ProjectID,
		CrossProject: req.CrossProject,
		Technologies: req.Technologies,
		Kinds:        kinds,
		Limit:        scanLimit,
	})
	if err != nil {
		return nil, err
	}

	var profile *models.DeveloperProfile
	if req.DeveloperID != "" {
		profile, err = e.learner.Get(req.DeveloperID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	scored := e.ranker.Rank(candidates, profile, req.ProjectID, k, now)

	// Warnings are advisory; a failure here must not break retrieval.
	warnings, err := e.transfer.DetectAntiPatterns(queryVector, req.DeveloperID, req.ProjectID, req.Technologies)
	if err != nil {
		log.Printf("[Engine] anti-pattern detection failed: %v", err)
		warnings = nil
	}

	if len(scored) > 0 {
		ids := make([]string, len(scored))
		for i := range scored {
			ids[i] = scored[i].Item.ID
		}
		if err := e.store.Items().TouchAll(ids, now); err != nil {
			log.Printf("[Engine] access tracking failed: %v", err)
		}
	}

	var fitted *models.FittedContext
	if req.Budget != nil {
		fitted = e.budgeter.Fit(ctx, scored, *req.Budget)
	} else {
		fitted = e.budgeter.All(scored, models.UnitTokens)
	}
	fitted.Warnings = warnings
	fitted.Degraded = degraded

	if err := e.store.Analytics().Log(storage.SearchRecord{
		Query:       req.Query,
		DeveloperID: req.DeveloperID,
		ProjectID:   req.ProjectID,
		ResultCount: len(scored),
		DurationMS:  time.Since(start).Milliseconds(),
		Degraded:    degraded,
		CreatedAt:   now,
	}); err != nil {
		log.Printf("[Engine] analytics logging failed: %v", err)
	}

	return fitted, nil
}

// queryVector embeds the query, reporting degradation when the provider
// fails. An empty query intentionally skips semantic scoring.
func (e *Engine) queryVector(ctx context.Context, query string) ([]float64, bool) {
	if query == "" {
		return nil, false
	}
	if e.embedder == nil {
		return nil, true
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[Engine] %v; ranking without semantic signal", &EmbeddingUnavailableError{Err: err})
		return nil, true
	}
	return vector, false
}

// OutcomeReport describes feedback on a previously retrieved item.
type OutcomeReport struct {
	ItemID  string
	Success bool
	// Optional transfer pair: set both to record a cross-technology
	// adoption attempt for the owning developer.
	SourceTechnology string
	TargetTechnology string
}

// OutcomeResult is the state after applying feedback.
type OutcomeResult struct {
	ItemID         string  `json:"item_id"`
	OutcomeScore   float64 `json:"outcome_score"`
	ProfileUpdated bool    `json:"profile_updated"`
}

// ReportOutcome nudges an item's outcome score by the configured step and
// folds the signal into the owning developer's profile.
func (e *Engine) ReportOutcome(ctx context.Context, report OutcomeReport) (*OutcomeResult, error) {
	item, err := e.store.Items().Get(report.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &NotFoundError{Entity: "context item", ID: report.ItemID}
	}

	delta := e.cfg.OutcomeStep
	if !report.Success {
		delta = -delta
	}

	found, err := e.store.Items().AdjustOutcome(report.ItemID, delta)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Entity: "context item", ID: report.ItemID}
	}

	now := time.Now().UTC()
	result := &OutcomeResult{
		ItemID:       report.ItemID,
		OutcomeScore: item.OutcomeScore.Add(delta).Float(),
	}

	if item.CreatedBy != "" {
		if _, err := e.learner.ObserveOutcome(item.CreatedBy, item, report.Success, now); err != nil {
			return nil, err
		}
		result.ProfileUpdated = true

		if report.SourceTechnology != "" && report.TargetTechnology != "" {
			if err := e.learner.ObserveTransfer(item.CreatedBy, report.SourceTechnology, report.TargetTechnology, report.Success, now); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// ProfileSummary returns a developer's preference profile. Unknown
// developers get a fresh neutral profile, never an error.
func (e *Engine) ProfileSummary(ctx context.Context, developerID string) (*models.DeveloperProfile, error) {
	if developerID == "" {
		return nil, fmt.Errorf("developer id is required")
	}
	return e.learner.Get(developerID)
}

// RegisterProject registers (or refreshes) a project scope. Technologies
// are detected from marker files under the root path when not provided.
func (e *Engine) RegisterProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project.ID == "" {
		project.ID = "proj_" + uuid.New().String()[:8]
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if len(project.Technologies) == 0 && project.RootPath != "" {
		project.Technologies = DetectTechnologies(project.RootPath)
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	if err := e.store.Projects().Register(project); err != nil {
		return nil, err
	}

	return project, nil
}

// Projects lists registered project scopes.
func (e *Engine) Projects(ctx context.Context) ([]models.Project, error) {
	return e.store.Projects().List()
}

// Ingest stores a batch of raw observations. Duplicates are skipped, not
// fatal; any other failure aborts with the counts so far.
func (e *Engine) Ingest(ctx context.Context, observations []models.RawObservation) (stored, skipped int, err error) {
	for _, obs := range observations {
		kind := obs.Kind
		if kind == "" {
			kind = models.KindConversation
		}

		_, serr := e.Store(ctx, StoreRequest{
			ProjectID:      obs.ProjectID,
			DeveloperID:    obs.DeveloperID,
			Kind:           string(kind),
			Content:        obs.Content,
			TechnologyTags: obs.TechnologyTags,
			CreatedAt:      obs.ObservedAt,
		})
		if serr != nil {
			if IsDuplicateContent(serr) {
				skipped++
				continue
			}
			return stored, skipped, fmt.Errorf("failed to ingest observation from %s: %w", obs.Source, serr)
		}
		stored++
	}

	return stored, skipped, nil
}

// TransferCandidates returns cross-technology reuse candidates for a
// pattern, ordered by success probability for the given developer.
func (e *Engine) TransferCandidates(ctx context.Context, patternID, targetTech, developerID string) ([]models.PatternLink, error) {
	item, err := e.store.Items().Get(patternID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &NotFoundError{Entity: "pattern", ID: patternID}
	}
	if item.Kind != models.KindCodePattern && item.Kind != models.KindAntiPattern {
		return nil, fmt.Errorf("item %s has kind %s, not a transferable pattern", patternID, item.Kind)
	}

	var profile *models.DeveloperProfile
	if developerID != "" {
		profile, err = e.learner.Get(developerID)
		if err != nil {
			return nil, err
		}
	}

	links, err := e.transfer.CandidatesFor(item, targetTech, profile)
	if err != nil {
		return nil, err
	}

	sortLinks(links)
	return links, nil
}

// PurgeExpired deletes items past the retention window that stayed cold and
// unsuccessful. Returns the number purged.
func (e *Engine) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-e.cfg.PurgeMaxAge)
	return e.store.Items().PurgeExpired(cutoff, e.cfg.PurgeMaxAccess, e.cfg.PurgeMaxOutcome)
}

// RecomputeLinks rebuilds the pattern link index immediately.
func (e *Engine) RecomputeLinks(ctx context.Context) (int, error) {
	return e.linker.Recompute(ctx)
}

// StartScheduler begins periodic link recomputation.
func (e *Engine) StartScheduler() error {
	return e.linker.Start()
}

// Shutdown stops background work, waiting up to the context deadline for an
// in-flight recompute to finish.
func (e *Engine) Shutdown(ctx context.Context) error {
	done := e.linker.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out waiting for background jobs: %w", ctx.Err())
	}
}

// EngineStats aggregates store contents for operators.
type EngineStats struct {
	ItemsByKind map[models.Kind]int       `json:"items_by_kind"`
	TotalItems  int                       `json:"total_items"`
	Projects    int                       `json:"projects"`
	Profiles    int                       `json:"profiles"`
	Links       int                       `json:"links"`
	Searches    *storage.AnalyticsSummary `json:"searches"`
}

// Stats reports store-wide counts and retrieval aggregates.
func (e *Engine) Stats(ctx context.Context) (*EngineStats, error) {
	byKind, err := e.store.Items().CountByKind()
	if err != nil {
		return nil, err
	}

	projects, err := e.store.Projects().List()
	if err != nil {
		return nil, err
	}

	profiles, err := e.store.Profiles().Count()
	if err != nil {
		return nil, err
	}

	links, err := e.store.Links().Count()
	if err != nil {
		return nil, err
	}

	searches, err := e.store.Analytics().Summary()
	if err != nil {
		return nil, err
	}

	stats := &EngineStats{
		ItemsByKind: byKind,
		Projects:    len(projects),
		Profiles:    profiles,
		Links:       links,
		Searches:    searches,
	}
	for _, n := range byKind {
		stats.TotalItems += n
	}

	return stats, nil
}

// sortLinks orders transfer candidates by success probability, similarity,
// then target, so responses are deterministic.
func sortLinks(links []models.PatternLink) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].SuccessProbability != links[j].SuccessProbability {
			return links[i].SuccessProbability > links[j].SuccessProbability
		}
		if links[i].Similarity != links[j].Similarity {
			return links[i].Similarity > links[j].Similarity
		}
		return links[i].TargetItemID < links[j].TargetItemID
	})
}

// newItemID mints a sortable, collision-resistant item ID.
func newItemID(now time.Time) string {
	return fmt.Sprintf("ctx_%s_%s", now.Format("20060102_150405"), uuid.New().String()[:8])
}
