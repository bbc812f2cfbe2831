package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"habitxp/achievements"
	"habitxp/database"
	"habitxp/models"
	"habitxp/testutil"

	"gorm.io/gorm"
)

type completionFixture struct {
	db       *gorm.DB
	recorder *CompletionRecorder
	user     *models.User
	leitura  *models.Challenge
	treino   *models.Challenge
}

func newCompletionFixture(t *testing.T, granter func(achievements.Store) AchievementGranter) *completionFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)

	u := testutil.SeedUser(t, ctx, db, "rec@example.com")
	g := testutil.SeedGoal(t, ctx, db, u.ID)
	leitura := testutil.SeedChallenge(t, ctx, db, g.ID, "LEITURA", 10)
	treino := testutil.SeedChallenge(t, ctx, db, g.ID, "EXERCICIO", 25)
	testutil.ReplaceAchievements(t, ctx, db,
		models.Achievement{Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"},
		models.Achievement{Name: "Leitor", Requirement: "Concluir 2 desafios tipo LEITURA"},
		models.Achievement{Name: "Em Chamas", Requirement: "Completar 2 dias seguidos"},
	)

	var g2 AchievementGranter = achievements.NewEngine(achievements.NewGormStore(), testutil.Logger(t))
	if granter != nil {
		g2 = granter(achievements.NewGormStore())
	}
	return &completionFixture{
		db:       db,
		recorder: NewCompletionRecorder(database.NewTxRunner(db), g2, testutil.Logger(t)),
		user:     u,
		leitura:  leitura,
		treino:   treino,
	}
}

// assertXPInvariant checks xp_total against the history sum.
func (f *completionFixture) assertXPInvariant(t *testing.T) int {
	t.Helper()
	var u models.User
	if err := f.db.First(&u, f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	var sum int64
	if err := f.db.Model(&models.HistoryEntry{}).
		Where("id_usuario = ? AND status = ?", f.user.ID, models.HistoryStatusCompleted).
		Select("COALESCE(SUM(xp_ganho), 0)").Scan(&sum).Error; err != nil {
		t.Fatalf("sum history: %v", err)
	}
	if int64(u.XPTotal) != sum {
		t.Fatalf("xp_total %d != history sum %d", u.XPTotal, sum)
	}
	return u.XPTotal
}

func (f *completionFixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where("id_usuario = ?", f.user.ID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRecordCompletionThenDuplicate(t *testing.T) {
	f := newCompletionFixture(t, nil)
	ctx := context.Background()
	day := models.MustParseDay("2024-03-05")

	res, err := f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, day)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if res.Status != StatusOK || res.XPEarned != 10 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.NewAchievements) != 1 || res.NewAchievements[0] != "Primeiro Passo" {
		t.Fatalf("unexpected grants: %v", res.NewAchievements)
	}
	if xp := f.assertXPInvariant(t); xp != 10 {
		t.Fatalf("xp_total = %d, want 10", xp)
	}

	res, err = f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, day)
	if err != nil {
		t.Fatalf("second RecordCompletion: %v", err)
	}
	if res.Status != StatusDuplicate || res.XPEarned != 0 || len(res.NewAchievements) != 0 {
		t.Fatalf("expected duplicate, got %+v", res)
	}
	if xp := f.assertXPInvariant(t); xp != 10 {
		t.Fatalf("duplicate changed xp_total to %d", xp)
	}
	if n := f.countRows(t, &models.HistoryEntry{}); n != 1 {
		t.Fatalf("history rows = %d, want 1", n)
	}
}

func TestRecordCompletionGrantsAcrossDays(t *testing.T) {
	f := newCompletionFixture(t, nil)
	ctx := context.Background()

	if _, err := f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, models.MustParseDay("2024-03-04")); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	res, err := f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, models.MustParseDay("2024-03-05"))
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if len(res.NewAchievements) != 2 || res.NewAchievements[0] != "Leitor" || res.NewAchievements[1] != "Em Chamas" {
		t.Fatalf("unexpected grants: %v", res.NewAchievements)
	}
	if n := f.countRows(t, &models.UserAchievement{}); n != 3 {
		t.Fatalf("grant rows = %d, want 3", n)
	}
	f.assertXPInvariant(t)
}

func TestRecordCompletionForbidden(t *testing.T) {
	f := newCompletionFixture(t, nil)
	ctx := context.Background()
	day := models.MustParseDay("2024-03-05")

	stranger := testutil.SeedUser(t, ctx, f.db, "stranger@example.com")
	res, err := f.recorder.RecordCompletion(ctx, stranger.ID, f.leitura.ID, day)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if res.Status != StatusForbidden {
		t.Fatalf("expected forbidden for foreign challenge, got %+v", res)
	}

	res, err = f.recorder.RecordCompletion(ctx, f.user.ID, 424242, day)
	if err != nil || res.Status != StatusForbidden {
		t.Fatalf("expected forbidden for unknown challenge, got %+v, %v", res, err)
	}

	if err := f.db.Delete(&models.Challenge{}, f.treino.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	res, err = f.recorder.RecordCompletion(ctx, f.user.ID, f.treino.ID, day)
	if err != nil || res.Status != StatusForbidden {
		t.Fatalf("expected forbidden for deleted challenge, got %+v, %v", res, err)
	}

	if n := f.countRows(t, &models.HistoryEntry{}); n != 0 {
		t.Fatalf("history rows = %d, want 0", n)
	}
	f.assertXPInvariant(t)
}

type failingGranter struct {
	inner AchievementGranter
	err   error
}

func (g failingGranter) EvaluateAndGrant(uow database.UnitOfWork, userID uint) ([]string, error) {
	if _, err := g.inner.EvaluateAndGrant(uow, userID); err != nil {
		return nil, err
	}
	return nil, g.err
}

func TestRecordCompletionRollsBackOnGrantFailure(t *testing.T) {
	boom := errors.New("grant failed")
	f := newCompletionFixture(t, func(store achievements.Store) AchievementGranter {
		return failingGranter{inner: achievements.NewEngine(store, nil), err: boom}
	})
	ctx := context.Background()

	_, err := f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, models.MustParseDay("2024-03-05"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	if n := f.countRows(t, &models.HistoryEntry{}); n != 0 {
		t.Fatalf("history survived rollback: %d rows", n)
	}
	if n := f.countRows(t, &models.UserAchievement{}); n != 0 {
		t.Fatalf("grants survived rollback: %d rows", n)
	}
	if xp := f.assertXPInvariant(t); xp != 0 {
		t.Fatalf("xp survived rollback: %d", xp)
	}
}

// failingGrantStore fails every grant insert with a non-duplicate error.
type failingGrantStore struct {
	achievements.Store
	err error
}

func (s failingGrantStore) InsertGrant(database.UnitOfWork, uint, uint) (bool, error) {
	return false, s.err
}

func TestRecordCompletionRollsBackOnGrantInsertFailure(t *testing.T) {
	boom := errors.New("grant insert failed")
	f := newCompletionFixture(t, func(store achievements.Store) AchievementGranter {
		return achievements.NewEngine(failingGrantStore{Store: store, err: boom}, nil)
	})
	ctx := context.Background()

	res, err := f.recorder.RecordCompletion(ctx, f.user.ID, f.leitura.ID, models.MustParseDay("2024-03-05"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected grant insert error, got %v (%+v)", err, res)
	}
	if res.Status != "" {
		t.Fatalf("failed completion returned status %q", res.Status)
	}

	if n := f.countRows(t, &models.HistoryEntry{}); n != 0 {
		t.Fatalf("history survived rollback: %d rows", n)
	}
	if n := f.countRows(t, &models.UserAchievement{}); n != 0 {
		t.Fatalf("grants survived rollback: %d rows", n)
	}
	if xp := f.assertXPInvariant(t); xp != 0 {
		t.Fatalf("xp survived rollback: %d", xp)
	}
}

func TestRecordCompletionConcurrentNoDoubleGrant(t *testing.T) {
	f := newCompletionFixture(t, nil)
	ctx := context.Background()
	day := models.MustParseDay("2024-03-05")

	const workers = 8
	results := make([]CompletionResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch := f.leitura
			if i%2 == 1 {
				ch = f.treino
			}
			results[i], errs[i] = f.recorder.RecordCompletion(ctx, f.user.ID, ch.ID, day)
		}(i)
	}
	wg.Wait()

	ok, firstStep := 0, 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].Status == StatusOK {
			ok++
		}
		for _, name := range results[i].NewAchievements {
			if name == "Primeiro Passo" {
				firstStep++
			}
		}
	}
	if ok != 2 {
		t.Fatalf("expected one ok per challenge, got %d", ok)
	}
	if firstStep != 1 {
		t.Fatalf("Primeiro Passo reported %d times", firstStep)
	}

	var grants int64
	if err := f.db.Model(&models.UserAchievement{}).
		Joins("JOIN conquistas c ON c.id_conquista = usuario_conquista.id_conquista").
		Where("usuario_conquista.id_usuario = ? AND c.nome_conquista = ?", f.user.ID, "Primeiro Passo").
		Count(&grants).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if grants != 1 {
		t.Fatalf("grant rows = %d, want 1", grants)
	}
	if xp := f.assertXPInvariant(t); xp != 35 {
		t.Fatalf("xp_total = %d, want 35", xp)
	}
}
