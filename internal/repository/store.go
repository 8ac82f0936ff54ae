package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one connection or one transaction.
type Store struct {
	db *gorm.DB

	Users     *UserRepository
	Calendars *CalendarRepository
	Planners  *PlannerRepository
	Plans     *PlanRepository
	Projects  *ProjectRepository
	Studies   *StudyRepository
	Posts     *PostRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepository(db),
		Calendars: NewCalendarRepository(db),
		Planners:  NewPlannerRepository(db),
		Plans:     NewPlanRepository(db),
		Projects:  NewProjectRepository(db),
		Studies:   NewStudyRepository(db),
		Posts:     NewPostRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle, mainly for shutdown and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
