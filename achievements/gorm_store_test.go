package achievements

import (
	"context"
	"testing"

	"habitxp/database"
	"habitxp/models"
	"habitxp/testutil"
)

func TestGormStoreQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	uow := database.UnitOfWork{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "store@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com")
	g := testutil.SeedGoal(t, ctx, tx, u.ID)
	leitura := testutil.SeedChallenge(t, ctx, tx, g.ID, "LEITURA", 10)
	exercicio := testutil.SeedChallenge(t, ctx, tx, g.ID, "EXERCICIO", 15)

	testutil.SeedCompletion(t, ctx, tx, u.ID, leitura, models.MustParseDay("2024-03-05"))
	testutil.SeedCompletion(t, ctx, tx, u.ID, exercicio, models.MustParseDay("2024-03-05"))
	testutil.SeedCompletion(t, ctx, tx, u.ID, leitura, models.MustParseDay("2024-03-04"))
	testutil.SeedCompletion(t, ctx, tx, u.ID, leitura, models.MustParseDay("2024-03-01"))

	og := testutil.SeedGoal(t, ctx, tx, other.ID)
	oc := testutil.SeedChallenge(t, ctx, tx, og.ID, "LEITURA", 10)
	testutil.SeedCompletion(t, ctx, tx, other.ID, oc, models.MustParseDay("2024-03-06"))

	skipped := models.HistoryEntry{UserID: u.ID, ChallengeID: exercicio.ID, Date: models.MustParseDay("2024-03-06"), Status: models.HistoryStatusSkipped}
	if err := tx.Create(&skipped).Error; err != nil {
		t.Fatalf("seed skipped: %v", err)
	}

	s := NewGormStore()

	xp, err := s.XPTotal(uow, u.ID)
	if err != nil || xp != 45 {
		t.Fatalf("XPTotal = %d, %v; want 45", xp, err)
	}

	n, err := s.CountCompletions(uow, u.ID)
	if err != nil || n != 4 {
		t.Fatalf("CountCompletions = %d, %v; want 4", n, err)
	}

	n, err = s.CountCompletionsOfType(uow, u.ID, "LEITURA")
	if err != nil || n != 3 {
		t.Fatalf("CountCompletionsOfType(LEITURA) = %d, %v; want 3", n, err)
	}
	n, err = s.CountCompletionsOfType(uow, u.ID, "leitura")
	if err != nil || n != 0 {
		t.Fatalf("type match must be exact, got %d, %v", n, err)
	}

	got, err := s.RecentCompletionDays(uow, u.ID, 2)
	if err != nil {
		t.Fatalf("RecentCompletionDays: %v", err)
	}
	want := days("2024-03-05", "2024-03-04")
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("RecentCompletionDays = %v, want %v", got, want)
	}

	missing, err := s.XPTotal(uow, 99999)
	if err != nil || missing != 0 {
		t.Fatalf("XPTotal(missing) = %d, %v", missing, err)
	}
}

func TestGormStoreInsertGrantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	uow := database.UnitOfWork{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "grant@example.com")
	defs := testutil.ReplaceAchievements(t, ctx, tx, models.Achievement{Name: "Primeiro Passo", Requirement: "Concluir 1 desafios total"})

	s := NewGormStore()
	inserted, err := s.InsertGrant(uow, u.ID, defs[0].ID)
	if err != nil || !inserted {
		t.Fatalf("first InsertGrant = %v, %v", inserted, err)
	}
	inserted, err = s.InsertGrant(uow, u.ID, defs[0].ID)
	if err != nil || inserted {
		t.Fatalf("second InsertGrant = %v, %v; want false, nil", inserted, err)
	}

	ids, err := s.GrantedIDs(uow, u.ID)
	if err != nil {
		t.Fatalf("GrantedIDs: %v", err)
	}
	if _, ok := ids[defs[0].ID]; !ok || len(ids) != 1 {
		t.Fatalf("GrantedIDs = %v", ids)
	}
}

func TestEngineAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	uow := database.UnitOfWork{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "engine@example.com")
	g := testutil.SeedGoal(t, ctx, tx, u.ID)
	c := testutil.SeedChallenge(t, ctx, tx, g.ID, "LEITURA", 10)
	testutil.ReplaceAchievements(t, ctx, tx,
		models.Achievement{Name: "Dupla Leitura", Requirement: "Concluir 2 desafios tipo LEITURA"},
		models.Achievement{Name: "Em Chamas", Requirement: "Completar 2 dias seguidos"},
		models.Achievement{Name: "Centenário", Requirement: "Acumular 100 XP"},
	)
	testutil.SeedCompletion(t, ctx, tx, u.ID, c, models.MustParseDay("2024-03-04"))
	testutil.SeedCompletion(t, ctx, tx, u.ID, c, models.MustParseDay("2024-03-05"))

	engine := NewEngine(NewGormStore(), testutil.Logger(t))
	got, err := engine.EvaluateAndGrant(uow, u.ID)
	if err != nil {
		t.Fatalf("EvaluateAndGrant: %v", err)
	}
	if len(got) != 2 || got[0] != "Dupla Leitura" || got[1] != "Em Chamas" {
		t.Fatalf("got %v", got)
	}

	again, err := engine.EvaluateAndGrant(uow, u.ID)
	if err != nil || len(again) != 0 {
		t.Fatalf("second run = %v, %v; want nothing new", again, err)
	}
}
