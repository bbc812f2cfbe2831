package achievements

import (
	"fmt"
	"sync"

	"habitxp/database"
	"habitxp/logger"
	"habitxp/models"
)

// Engine grants every achievement a user has newly satisfied. It only
// reads and writes through the unit of work it is handed; it never
// touches XP.
type Engine struct {
	store Store
	log   *logger.Logger

	mu sync.Mutex
	// reported maps an invalid catalog id to the text already logged.
	reported map[uint]string
}

func NewEngine(store Store, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		store:    store,
		log:      log.With("component", "achievements"),
		reported: map[uint]string{},
	}
}

// EvaluateAndGrant checks every ungranted catalog entry in ascending id
// order and inserts a grant for each satisfied one. It returns the names
// of the grants it actually inserted. Any store error is returned as is
// so the caller rolls the unit of work back.
func (e *Engine) EvaluateAndGrant(uow database.UnitOfWork, userID uint) ([]string, error) {
	rows, err := e.store.ListAchievements(uow)
	if err != nil {
		return nil, err
	}
	defs, invalid := BuildCatalog(rows)
	e.reportInvalid(invalid)

	granted, err := e.store.GrantedIDs(uow, userID)
	if err != nil {
		return nil, err
	}

	pending := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if _, ok := granted[def.ID]; ok {
			continue
		}
		if def.Requirement.N <= 0 {
			e.log.Warn("catalog requirement has non-positive threshold",
				"id_conquista", def.ID,
				"requirement", def.Requirement.String(),
			)
		}
		pending = append(pending, def)
	}
	if len(pending) == 0 {
		return []string{}, nil
	}

	facts := newFactLoader(e.store, uow, userID, pending)
	if facts.xp, err = e.store.XPTotal(uow, userID); err != nil {
		return nil, err
	}

	newlyGranted := []string{}
	for _, def := range pending {
		f, err := facts.forRequirement(def.Requirement)
		if err != nil {
			return nil, err
		}
		if !Evaluate(def.Requirement, f) {
			continue
		}

		inserted, err := e.store.InsertGrant(uow, userID, def.ID)
		if err != nil {
			return nil, fmt.Errorf("grant %q: %w", def.Name, err)
		}
		if !inserted {
			continue
		}
		newlyGranted = append(newlyGranted, def.Name)
		e.log.Info("achievement granted", "user_id", userID, "id_conquista", def.ID, "nome_conquista", def.Name)
	}

	return newlyGranted, nil
}

// reportInvalid warns about each unparseable entry once, and again only
// if its text changes.
func (e *Engine) reportInvalid(invalid []InvalidDefinition) {
	if len(invalid) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, bad := range invalid {
		if text, seen := e.reported[bad.ID]; seen && text == bad.Text {
			continue
		}
		e.reported[bad.ID] = bad.Text
		e.log.Warn("catalog requirement not understood",
			"id_conquista", bad.ID,
			"nome_conquista", bad.Name,
			"requisito", bad.Text,
			"error", bad.Err,
		)
	}
}

// factLoader fetches each statistic the first time a requirement needs
// it and reuses it for the rest of the call.
type factLoader struct {
	store  Store
	uow    database.UnitOfWork
	userID uint

	xp int

	completions       int
	completionsLoaded bool

	streakLimit int
	recentDays  []models.Day
	daysLoaded  bool

	byType map[string]int
}

func newFactLoader(store Store, uow database.UnitOfWork, userID uint, pending []Definition) *factLoader {
	l := &factLoader{store: store, uow: uow, userID: userID, byType: map[string]int{}}
	for _, def := range pending {
		if def.Requirement.Kind == KindConsecutiveDays && def.Requirement.N > l.streakLimit {
			l.streakLimit = def.Requirement.N
		}
	}
	return l
}

func (l *factLoader) forRequirement(req Requirement) (Facts, error) {
	f := Facts{XPTotal: l.xp}
	switch req.Kind {
	case KindTotalCompletions:
		if !l.completionsLoaded {
			n, err := l.store.CountCompletions(l.uow, l.userID)
			if err != nil {
				return Facts{}, err
			}
			l.completions, l.completionsLoaded = n, true
		}
		f.Completions = l.completions

	case KindConsecutiveDays:
		if !l.daysLoaded {
			// One query serves every streak length in the catalog.
			days, err := l.store.RecentCompletionDays(l.uow, l.userID, l.streakLimit)
			if err != nil {
				return Facts{}, err
			}
			l.recentDays, l.daysLoaded = days, true
		}
		f.RecentDays = l.recentDays

	case KindCompletionsOfType:
		if _, ok := l.byType[req.Type]; !ok {
			n, err := l.store.CountCompletionsOfType(l.uow, l.userID, req.Type)
			if err != nil {
				return Facts{}, err
			}
			l.byType[req.Type] = n
		}
		f.TypeCompletions = map[string]int{req.Type: l.byType[req.Type]}
	}
	return f, nil
}
