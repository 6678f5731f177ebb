// ABOUTME: Tests for the developer profile learner
// ABOUTME: Covers EMA bounds and convergence, anti-pattern flagging, snapshots, and write serialization

package core

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

func newTestLearner(t *testing.T) (*ProfileLearner, *storage.Storage) {
	t.Helper()
	store, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewProfileLearner(store.Profiles(), testConfig()), store
}

func outcomeItem(id string, kind models.Kind, tags ...string) *models.ContextItem {
	return &models.ContextItem{
		ID:             id,
		ProjectID:      "proj-1",
		Kind:           kind,
		Content:        "content " + id,
		TechnologyTags: tags,
		OutcomeScore:   models.Neutral,
	}
}

func TestObserveOutcomeBoundedStep(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := outcomeItem("item-1", models.KindConversation, "go")
	profile, err := learner.ObserveOutcome("dev-1", item, true, now)
	if err != nil {
		t.Fatalf("ObserveOutcome() error = %v", err)
	}

	// One EMA step from neutral: 0.5 + 0.1*(1.0-0.5) = 0.55.
	got := profile.TechnologyWeights["go"].Float()
	if math.Abs(got-0.55) > 1e-9 {
		t.Errorf("weight after one success = %f, want 0.55", got)
	}

	profile, err = learner.ObserveOutcome("dev-1", item, false, now)
	if err != nil {
		t.Fatalf("ObserveOutcome() error = %v", err)
	}
	// 0.55 + 0.1*(0.0-0.55) = 0.495.
	got = profile.TechnologyWeights["go"].Float()
	if math.Abs(got-0.495) > 1e-9 {
		t.Errorf("weight after failure = %f, want 0.495", got)
	}
}

func TestObserveOutcomeConvergence(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := outcomeItem("item-1", models.KindConversation, "go")
	var profile *models.DeveloperProfile
	var err error
	for i := 0; i < 5; i++ {
		profile, err = learner.ObserveOutcome("dev-1", item, true, now)
		if err != nil {
			t.Fatalf("ObserveOutcome() %d error = %v", i, err)
		}
	}

	// Five successes from neutral: 1 - 0.5*0.9^5 = 0.704755.
	want := 1.0 - 0.5*math.Pow(0.9, 5)
	got := profile.TechnologyWeights["go"].Float()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("weight after five successes = %f, want %f", got, want)
	}
}

func TestAntiPatternFlaggingLifecycle(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := outcomeItem("pat-1", models.KindCodePattern, "go")

	// Confidence crosses below 0.25 on the 7th failure: 0.5*0.9^7 = 0.239.
	var profile *models.DeveloperProfile
	var err error
	for i := 0; i < 7; i++ {
		profile, err = learner.ObserveOutcome("dev-1", item, false, now)
		if err != nil {
			t.Fatalf("ObserveOutcome() %d error = %v", i, err)
		}
	}

	if evidence := profile.AntiPatterns["pat-1"]; evidence != 1 {
		t.Errorf("evidence after crossing threshold = %d, want 1", evidence)
	}

	for i := 0; i < 3; i++ {
		profile, err = learner.ObserveOutcome("dev-1", item, false, now)
		if err != nil {
			t.Fatalf("ObserveOutcome() extra failure error = %v", err)
		}
	}
	if evidence := profile.AntiPatterns["pat-1"]; evidence != 4 {
		t.Errorf("evidence after more failures = %d, want 4", evidence)
	}

	// One success lifts confidence back above the flag threshold:
	// 0.1743 + 0.1*(1-0.1743) = 0.2569.
	profile, err = learner.ObserveOutcome("dev-1", item, true, now)
	if err != nil {
		t.Fatalf("ObserveOutcome() recovery error = %v", err)
	}
	if _, flagged := profile.AntiPatterns["pat-1"]; flagged {
		t.Error("pattern still flagged after confidence recovered")
	}
	if got := profile.PatternConfidence["pat-1"].Float(); got < 0.25 {
		t.Errorf("confidence after recovery = %f, want >= 0.25", got)
	}
}

func TestObserveUsageNudgesTowardOne(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := learner.ObserveUsage("dev-1", []string{"go", "sqlite"}, now); err != nil {
		t.Fatalf("ObserveUsage() error = %v", err)
	}

	profile, err := learner.Get("dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	for _, tech := range []string{"go", "sqlite"} {
		got := profile.TechnologyWeights[tech].Float()
		if math.Abs(got-0.55) > 1e-9 {
			t.Errorf("weight for %s = %f, want 0.55", tech, got)
		}
	}

	// Empty input is a no-op.
	if err := learner.ObserveUsage("dev-1", nil, now); err != nil {
		t.Errorf("ObserveUsage(nil) error = %v", err)
	}
}

func TestSnapshotCadence(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		if err := learner.ObserveUsage("dev-1", []string{"go"}, now.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("ObserveUsage() %d error = %v", i, err)
		}
	}

	profile, err := learner.Get("dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if profile.UpdateCount != 100 {
		t.Errorf("update count = %d, want 100", profile.UpdateCount)
	}
	if len(profile.EvolutionLog) != 2 {
		t.Fatalf("evolution log length = %d, want 2 (snapshots at 50 and 100)", len(profile.EvolutionLog))
	}
	if profile.EvolutionLog[0].UpdateCount != 50 || profile.EvolutionLog[1].UpdateCount != 100 {
		t.Errorf("snapshot update counts = [%d %d], want [50 100]",
			profile.EvolutionLog[0].UpdateCount, profile.EvolutionLog[1].UpdateCount)
	}
}

func TestEvolutionLogBounded(t *testing.T) {
	store, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := testConfig()
	cfg.SnapshotEvery = 1
	cfg.EvolutionLogMax = 5
	learner := NewProfileLearner(store.Profiles(), cfg)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		if err := learner.ObserveUsage("dev-1", []string{"go"}, now); err != nil {
			t.Fatalf("ObserveUsage() %d error = %v", i, err)
		}
	}

	profile, err := learner.Get("dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(profile.EvolutionLog) != 5 {
		t.Fatalf("evolution log length = %d, want trimmed to 5", len(profile.EvolutionLog))
	}
	// Oldest entries are discarded first.
	if profile.EvolutionLog[0].UpdateCount != 4 {
		t.Errorf("oldest kept snapshot = %d, want 4", profile.EvolutionLog[0].UpdateCount)
	}
}

func TestObserveTransferAndAdoptionRate(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	results := []bool{true, true, true, false}
	for _, success := range results {
		if err := learner.ObserveTransfer("dev-1", "go", "rust", success, now); err != nil {
			t.Fatalf("ObserveTransfer() error = %v", err)
		}
	}

	profile, err := learner.Get("dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	stat := profile.TransferStats[models.TransferKey("go", "rust")]
	if stat.Attempts != 4 || stat.Successes != 3 {
		t.Errorf("transfer stat = %+v, want {4 3}", stat)
	}
	if rate := profile.AdoptionRate("go", "rust"); math.Abs(rate-0.75) > 1e-9 {
		t.Errorf("adoption rate = %f, want 0.75", rate)
	}
	// Unseen pairs fall back to the global prior.
	if rate := profile.AdoptionRate("rust", "go"); rate != 0.5 {
		t.Errorf("adoption rate for unseen pair = %f, want prior 0.5", rate)
	}
}

func TestGetUnknownDeveloperIsFreshNeutral(t *testing.T) {
	learner, store := newTestLearner(t)

	profile, err := learner.Get("dev-new")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if profile.UpdateCount != 0 || len(profile.TechnologyWeights) != 0 {
		t.Errorf("fresh profile = %+v, want empty neutral", profile)
	}
	if profile.TechnologyWeight("anything") != models.Neutral {
		t.Errorf("weight default = %f, want neutral", profile.TechnologyWeight("anything"))
	}

	// Reading must not create a row.
	count, err := store.Profiles().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("profile rows after read = %d, want 0", count)
	}
}

func TestConcurrentObservesSerialized(t *testing.T) {
	learner, _ := newTestLearner(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- learner.ObserveUsage("dev-1", []string{"go"}, now)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent ObserveUsage() error = %v", err)
		}
	}

	profile, err := learner.Get("dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// Per-developer serialization means no update is lost.
	if profile.UpdateCount != workers {
		t.Errorf("update count = %d, want %d", profile.UpdateCount, workers)
	}
}
