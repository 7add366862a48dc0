package storage

import "github.com/BillwoodMarbles/goal-tracker-sub000/internal"

// Repositories bundles the three stores a backend provides, plus its
// shutdown hook.
type Repositories struct {
	Goals  GoalRepository
	Daily  DailyStatusRepository
	Weekly WeeklyStatusRepository

	closer func() error
}

func (r Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

func NewFileRepositories(goalsFile, dailyFile, weeklyFile string, logger internal.Logger) (Repositories, error) {
	s, err := NewFileStorage(goalsFile, dailyFile, weeklyFile, logger)
	if err != nil {
		return Repositories{}, err
	}
	return Repositories{Goals: s, Daily: s, Weekly: s, closer: s.Close}, nil
}

func NewSQLiteRepositories(path string, logger internal.Logger) (Repositories, error) {
	s, err := NewSQLiteStorage(path, logger)
	if err != nil {
		return Repositories{}, err
	}
	return Repositories{Goals: s, Daily: s, Weekly: s, closer: s.Close}, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (Repositories, error) {
	s, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return Repositories{}, err
	}
	return Repositories{Goals: s, Daily: s, Weekly: s, closer: s.Close}, nil
}
