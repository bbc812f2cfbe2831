package achievements

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"habitxp/database"
	"habitxp/logger"
	"habitxp/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	catalog     []models.Achievement
	xp          int
	completions int
	days        []models.Day
	byType      map[string]int
	granted     map[uint]struct{}

	// grantedElsewhere simulates a concurrent transaction that inserted
	// the grant after GrantedIDs was read.
	grantedElsewhere map[uint]bool
	insertErr        error

	calls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byType:           map[string]int{},
		granted:          map[uint]struct{}{},
		grantedElsewhere: map[uint]bool{},
		calls:            map[string]int{},
	}
}

func (f *fakeStore) ListAchievements(database.UnitOfWork) ([]models.Achievement, error) {
	f.calls["list"]++
	return f.catalog, nil
}

func (f *fakeStore) XPTotal(database.UnitOfWork, uint) (int, error) {
	f.calls["xp"]++
	return f.xp, nil
}

func (f *fakeStore) GrantedIDs(database.UnitOfWork, uint) (map[uint]struct{}, error) {
	f.calls["granted"]++
	out := make(map[uint]struct{}, len(f.granted))
	for id := range f.granted {
		out[id] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) CountCompletions(database.UnitOfWork, uint) (int, error) {
	f.calls["count"]++
	return f.completions, nil
}

func (f *fakeStore) RecentCompletionDays(_ database.UnitOfWork, _ uint, limit int) ([]models.Day, error) {
	f.calls["days"]++
	if limit < len(f.days) {
		return f.days[:limit], nil
	}
	return f.days, nil
}

func (f *fakeStore) CountCompletionsOfType(_ database.UnitOfWork, _ uint, tipo string) (int, error) {
	f.calls["type:"+tipo]++
	return f.byType[tipo], nil
}

func (f *fakeStore) InsertGrant(_ database.UnitOfWork, _ uint, achievementID uint) (bool, error) {
	f.calls["insert"]++
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.grantedElsewhere[achievementID] {
		return false, nil
	}
	if _, ok := f.granted[achievementID]; ok {
		return false, nil
	}
	f.granted[achievementID] = struct{}{}
	return true, nil
}

func testUOW() database.UnitOfWork {
	return database.UnitOfWork{Ctx: context.Background()}
}

func TestEngineGrantsSatisfiedInCatalogOrder(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
		{ID: 2, Name: "Persistente", Requirement: "Concluir 10 desafios total"},
		{ID: 3, Name: "Centenário", Requirement: "Acumular 100 XP"},
		{ID: 4, Name: "Leitor", Requirement: "Concluir 2 desafios tipo LEITURA"},
		{ID: 5, Name: "Em Chamas", Requirement: "Completar 3 dias seguidos"},
	}
	store.completions = 3
	store.xp = 150
	store.byType["LEITURA"] = 2
	store.days = days("2024-03-05", "2024-03-04", "2024-03-03")

	got, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	want := []string{"Primeiro Passo", "Centenário", "Leitor", "Em Chamas"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if store.calls["count"] != 1 {
		t.Fatalf("completion count should be loaded once, got %d", store.calls["count"])
	}
}

func TestEngineSkipsAlreadyGranted(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
	}
	store.completions = 5
	store.granted[1] = struct{}{}

	got, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no grants, got %v", got)
	}
	if store.calls["insert"] != 0 || store.calls["count"] != 0 {
		t.Fatalf("granted achievements should not be re-evaluated: %v", store.calls)
	}
}

func TestEngineOnlyLoadsNeededFacts(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Centenário", Requirement: "Acumular 100 XP"},
	}
	store.xp = 10

	if _, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7); err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if store.calls["days"] != 0 || store.calls["count"] != 0 {
		t.Fatalf("unexpected fact queries: %v", store.calls)
	}
}

func TestEngineStreakQueriedOnceWithLargestWindow(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Três", Requirement: "Completar 3 dias seguidos"},
		{ID: 2, Name: "Sete", Requirement: "Completar 7 dias seguidos"},
	}
	store.days = days("2024-03-05", "2024-03-04", "2024-03-03", "2024-02-01")

	got, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Três"}) {
		t.Fatalf("got %v", got)
	}
	if store.calls["days"] != 1 {
		t.Fatalf("expected a single streak query, got %d", store.calls["days"])
	}
}

func TestEngineSwallowsConcurrentGrant(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
		{ID: 2, Name: "Centenário", Requirement: "Acumular 100 XP"},
	}
	store.completions = 1
	store.xp = 100
	store.grantedElsewhere[1] = true

	got, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Centenário"}) {
		t.Fatalf("got %v", got)
	}
}

func TestEngineIgnoresUnparseableRequirement(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Misterioso", Requirement: "Seja incrível"},
		{ID: 2, Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
	}
	store.completions = 1

	got, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Primeiro Passo"}) {
		t.Fatalf("got %v", got)
	}
}

func TestEngineReportsInvalidRequirementOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Misterioso", Requirement: "Seja incrível"},
	}
	engine := NewEngine(store, log)

	for i := 0; i < 3; i++ {
		if _, err := engine.EvaluateAndGrant(testUOW(), 7); err != nil {
			t.Fatalf("EvaluateAndGrant: %v", err)
		}
	}
	reported := logs.FilterMessage("catalog requirement not understood").All()
	if len(reported) != 1 {
		t.Fatalf("expected one report across calls, got %d", len(reported))
	}
	if reported[0].Level != zapcore.WarnLevel {
		t.Fatalf("reported at %s, want warn", reported[0].Level)
	}

	store.catalog[0].Requirement = "Ainda incrível"
	if _, err := engine.EvaluateAndGrant(testUOW(), 7); err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if n := logs.FilterMessage("catalog requirement not understood").Len(); n != 2 {
		t.Fatalf("changed text should be reported again, got %d reports", n)
	}
}

func TestEnginePropagatesInsertError(t *testing.T) {
	store := newFakeStore()
	store.catalog = []models.Achievement{
		{ID: 1, Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
	}
	store.completions = 1
	boom := errors.New("disk full")
	store.insertErr = boom

	_, err := NewEngine(store, logger.Nop()).EvaluateAndGrant(testUOW(), 7)
	if !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
}

func TestEngineNothingPending(t *testing.T) {
	store := newFakeStore()
	got, err := NewEngine(store, nil).EvaluateAndGrant(testUOW(), 7)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
