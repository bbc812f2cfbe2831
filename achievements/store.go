package achievements

import (
	"habitxp/database"
	"habitxp/models"
)

// Store is everything the engine reads and writes. Every method runs on
// the given unit of work and must not open a transaction of its own.
type Store interface {
	// ListAchievements returns the catalog ordered by ascending id.
	ListAchievements(uow database.UnitOfWork) ([]models.Achievement, error)
	XPTotal(uow database.UnitOfWork, userID uint) (int, error)
	GrantedIDs(uow database.UnitOfWork, userID uint) (map[uint]struct{}, error)

	CountCompletions(uow database.UnitOfWork, userID uint) (int, error)
	// RecentCompletionDays returns up to limit distinct completion
	// dates, most recent first.
	RecentCompletionDays(uow database.UnitOfWork, userID uint, limit int) ([]models.Day, error)
	CountCompletionsOfType(uow database.UnitOfWork, userID uint, tipo string) (int, error)

	// InsertGrant is idempotent. inserted is false when the user already
	// held the achievement.
	InsertGrant(uow database.UnitOfWork, userID, achievementID uint) (inserted bool, err error)
}
