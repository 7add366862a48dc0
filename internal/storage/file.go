package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// FileStorage keeps everything in memory and flushes each collection to its
// own JSON file through a debounced background worker. Writes are atomic
// (temp file + rename).
type FileStorage struct {
	goals       map[string]*internal.Goal                     // goalID -> Goal
	userGoals   map[string][]*internal.Goal                   // userID -> goals, newest first
	daily       map[string]*internal.DailyCompletionStatus    // userID|goalID|date
	weekly      map[string]*internal.WeeklyCompletionStatus   // userID|goalID|weekStart
	mu          sync.RWMutex
	goalsFile   string
	dailyFile   string
	weeklyFile  string
	saveGoals   chan struct{}
	saveDaily   chan struct{}
	saveWeekly  chan struct{}
	shutdown    chan struct{}
	saveDelay   time.Duration
	logger      internal.Logger
	workerGroup sync.WaitGroup
}

func NewFileStorage(goalsFile, dailyFile, weeklyFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		goals:      make(map[string]*internal.Goal),
		userGoals:  make(map[string][]*internal.Goal),
		daily:      make(map[string]*internal.DailyCompletionStatus),
		weekly:     make(map[string]*internal.WeeklyCompletionStatus),
		goalsFile:  goalsFile,
		dailyFile:  dailyFile,
		weeklyFile: weeklyFile,
		saveGoals:  make(chan struct{}, 1),
		saveDaily:  make(chan struct{}, 1),
		saveWeekly: make(chan struct{}, 1),
		shutdown:   make(chan struct{}),
		saveDelay:  500 * time.Millisecond,
		logger:     logger,
	}

	if err := s.loadGoals(); err != nil {
		logger.Errorf("storage: failed to load goals: %v", err)
		return nil, err
	}
	if err := s.loadDaily(); err != nil {
		logger.Errorf("storage: failed to load daily statuses: %v", err)
		return nil, err
	}
	if err := s.loadWeekly(); err != nil {
		logger.Errorf("storage: failed to load weekly statuses: %v", err)
		return nil, err
	}

	s.workerGroup.Add(3)
	go s.saveWorker("goals", s.saveGoals, s.flushGoals)
	go s.saveWorker("daily statuses", s.saveDaily, s.flushDaily)
	go s.saveWorker("weekly statuses", s.saveWeekly, s.flushWeekly)

	return s, nil
}

func statusKey(userID, goalID, period string) string {
	return userID + "|" + goalID + "|" + period
}

func loadJSONFile[T any](path string) ([]*T, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var items []*T
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (s *FileStorage) loadGoals() error {
	goals, err := loadJSONFile[internal.Goal](s.goalsFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range goals {
		s.goals[g.ID] = g
		s.userGoals[g.UserID] = append(s.userGoals[g.UserID], g)
	}
	for userID := range s.userGoals {
		sort.SliceStable(s.userGoals[userID], func(i, j int) bool {
			return s.userGoals[userID][i].CreatedAt.After(s.userGoals[userID][j].CreatedAt)
		})
	}
	return nil
}

func (s *FileStorage) loadDaily() error {
	statuses, err := loadJSONFile[internal.DailyCompletionStatus](s.dailyFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statuses {
		s.daily[statusKey(st.UserID, st.GoalID, st.Date)] = st
	}
	return nil
}

func (s *FileStorage) loadWeekly() error {
	statuses, err := loadJSONFile[internal.WeeklyCompletionStatus](s.weeklyFile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statuses {
		s.weekly[statusKey(st.UserID, st.GoalID, st.WeekStart)] = st
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) flushGoals() error {
	s.mu.RLock()
	goals := make([]*internal.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		goals = append(goals, g)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.goalsFile, goals)
}

func (s *FileStorage) flushDaily() error {
	s.mu.RLock()
	statuses := make([]*internal.DailyCompletionStatus, 0, len(s.daily))
	for _, st := range s.daily {
		statuses = append(statuses, st)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.dailyFile, statuses)
}

func (s *FileStorage) flushWeekly() error {
	s.mu.RLock()
	statuses := make([]*internal.WeeklyCompletionStatus, 0, len(s.weekly))
	for _, st := range s.weekly {
		statuses = append(statuses, st)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.weeklyFile, statuses)
}

// saveWorker batches save signals so bursts of mutations produce one disk
// write after saveDelay of quiet.
func (s *FileStorage) saveWorker(name string, signal <-chan struct{}, flush func() error) {
	defer s.workerGroup.Done()
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := flush(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", name, err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdown)
	s.workerGroup.Wait()

	// Flush pending data synchronously on shutdown.
	if err := s.flushGoals(); err != nil {
		return err
	}
	if err := s.flushDaily(); err != nil {
		return err
	}
	return s.flushWeekly()
}

// --- GoalRepository ---

func (s *FileStorage) SaveGoal(ctx context.Context, goal *internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := *goal
	if prev, ok := s.goals[g.ID]; ok {
		// Replace in place in the user index.
		for i, existing := range s.userGoals[prev.UserID] {
			if existing.ID == g.ID {
				s.userGoals[prev.UserID][i] = &g
				break
			}
		}
	} else {
		// Newest first.
		s.userGoals[g.UserID] = append([]*internal.Goal{&g}, s.userGoals[g.UserID]...)
	}
	s.goals[g.ID] = &g

	signalSave(s.saveGoals)
	return nil
}

func (s *FileStorage) GetGoal(ctx context.Context, userID, goalID string) (*internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (s *FileStorage) ListGoals(ctx context.Context, userID string) ([]internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := make([]internal.Goal, 0, len(s.userGoals[userID]))
	for _, g := range s.userGoals[userID] {
		if !g.IsActive {
			continue
		}
		goals = append(goals, *g)
	}
	return goals, nil
}

// --- DailyStatusRepository ---

func cloneDaily(st *internal.DailyCompletionStatus) *internal.DailyCompletionStatus {
	copied := *st
	copied.StepCompletions = append([]*time.Time(nil), st.StepCompletions...)
	return &copied
}

func cloneWeekly(st *internal.WeeklyCompletionStatus) *internal.WeeklyCompletionStatus {
	copied := *st
	copied.StepCompletions = append([]*time.Time(nil), st.StepCompletions...)
	copied.DailyIncrements = make(map[string]bool, len(st.DailyIncrements))
	for k, v := range st.DailyIncrements {
		copied.DailyIncrements[k] = v
	}
	return &copied
}

func (s *FileStorage) GetDailyStatus(ctx context.Context, userID, goalID, date string) (*internal.DailyCompletionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.daily[statusKey(userID, goalID, date)]
	if !ok {
		return nil, nil
	}
	return cloneDaily(st), nil
}

func (s *FileStorage) UpsertDailyStatus(ctx context.Context, status *internal.DailyCompletionStatus) error {
	s.mu.Lock()
	st := cloneDaily(status)
	st.LastUpdated = time.Now()
	s.daily[statusKey(st.UserID, st.GoalID, st.Date)] = st
	s.mu.Unlock()

	signalSave(s.saveDaily)
	return nil
}

func (s *FileStorage) ListDailyStatuses(ctx context.Context, userID string, dates []string) ([]internal.DailyCompletionStatus, error) {
	wanted := make(map[string]bool, len(dates))
	for _, d := range dates {
		wanted[d] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var statuses []internal.DailyCompletionStatus
	for _, st := range s.daily {
		if st.UserID == userID && wanted[st.Date] {
			statuses = append(statuses, *cloneDaily(st))
		}
	}
	return statuses, nil
}

// --- WeeklyStatusRepository ---

func (s *FileStorage) GetWeeklyStatus(ctx context.Context, userID, goalID, weekStart string) (*internal.WeeklyCompletionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.weekly[statusKey(userID, goalID, weekStart)]
	if !ok {
		return nil, nil
	}
	return cloneWeekly(st), nil
}

func (s *FileStorage) UpsertWeeklyStatus(ctx context.Context, status *internal.WeeklyCompletionStatus) error {
	s.mu.Lock()
	st := cloneWeekly(status)
	st.LastUpdated = time.Now()
	s.weekly[statusKey(st.UserID, st.GoalID, st.WeekStart)] = st
	s.mu.Unlock()

	signalSave(s.saveWeekly)
	return nil
}

func (s *FileStorage) ListWeeklyStatuses(ctx context.Context, userID, weekStart string) ([]internal.WeeklyCompletionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var statuses []internal.WeeklyCompletionStatus
	for _, st := range s.weekly {
		if st.UserID == userID && st.WeekStart == weekStart {
			statuses = append(statuses, *cloneWeekly(st))
		}
	}
	return statuses, nil
}

// --- Compile-time assertions ---
var _ GoalRepository = (*FileStorage)(nil)
var _ DailyStatusRepository = (*FileStorage)(nil)
var _ WeeklyStatusRepository = (*FileStorage)(nil)
