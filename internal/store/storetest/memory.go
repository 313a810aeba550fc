// Package storetest provides in-memory implementations of the store
// interfaces for unit tests. A single DB backs all stores with one mutex,
// so check-then-act operations such as TryClaim are atomic and claim
// exclusivity can be exercised with real concurrency.
package storetest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// DB is an in-memory stand-in for the transactional task store.
type DB struct {
	mu sync.Mutex

	queue      map[string]*domain.QueueItem
	queueOrder []string
	activity   map[string]*domain.ActivityRecord
	properties map[string]string
	projects   map[string]*domain.Project
	branches   map[string]*domain.Branch
	users      map[string]*domain.User
}

// NewDB creates an empty in-memory store.
func NewDB() *DB {
	return &DB{
		queue:      make(map[string]*domain.QueueItem),
		activity:   make(map[string]*domain.ActivityRecord),
		properties: make(map[string]string),
		projects:   make(map[string]*domain.Project),
		branches:   make(map[string]*domain.Branch),
		users:      make(map[string]*domain.User),
	}
}

// Transactor returns a store.Transactor that simply runs the function; the
// in-memory store has no real transactions to manage.
func (d *DB) Transactor() store.Transactor { return &memTransactor{} }

// QueueStore returns the queue table view of this DB.
func (d *DB) QueueStore() store.QueueStore { return &memQueueStore{db: d} }

// ActivityStore returns the activity table view of this DB.
func (d *DB) ActivityStore() store.ActivityStore { return &memActivityStore{db: d} }

// PropertyStore returns the properties table view of this DB.
func (d *DB) PropertyStore() store.PropertyStore { return &memPropertyStore{db: d} }

// ProjectStore returns the project/branch lookup view of this DB.
func (d *DB) ProjectStore() store.ProjectStore { return &memProjectStore{db: d} }

// UserStore returns the user lookup view of this DB.
func (d *DB) UserStore() store.UserStore { return &memUserStore{db: d} }

// AddProject seeds a project for resolver lookups.
func (d *DB) AddProject(p domain.Project) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects[p.ID] = &p
}

// AddBranch seeds a branch for resolver lookups.
func (d *DB) AddBranch(b domain.Branch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.branches[b.ID] = &b
}

// RemoveBranch deletes a seeded branch, simulating a component deleted while
// a task is in flight.
func (d *DB) RemoveBranch(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.branches, id)
}

// AddUser seeds a user for submitter lookups.
func (d *DB) AddUser(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = &u
}

type memTransactor struct{}

func (t *memTransactor) InTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

type memQueueStore struct {
	db *DB
}

func (s *memQueueStore) WithTx(tx *sql.Tx) store.QueueStore { return s }

func (s *memQueueStore) Insert(ctx context.Context, item *domain.QueueItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.queue[item.ID]; ok {
		return store.ErrDuplicate
	}
	clone := *item
	s.db.queue[item.ID] = &clone
	s.db.queueOrder = append(s.db.queueOrder, item.ID)
	return nil
}

func (s *memQueueStore) GetByID(ctx context.Context, id string) (*domain.QueueItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	item, ok := s.db.queue[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *memQueueStore) SelectPending(ctx context.Context) ([]*domain.QueueItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var items []*domain.QueueItem
	for _, id := range s.db.queueOrder {
		if item, ok := s.db.queue[id]; ok && item.Status == domain.TaskStatusPending {
			clone := *item
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (s *memQueueStore) SelectByEntityID(ctx context.Context, entityID string) ([]*domain.QueueItem, error) {
	return s.selectMatching(func(item *domain.QueueItem) bool {
		return item.EntityID != "" && item.EntityID == entityID
	})
}

func (s *memQueueStore) SelectByTaskType(ctx context.Context, taskType string) ([]*domain.QueueItem, error) {
	return s.selectMatching(func(item *domain.QueueItem) bool {
		return item.TaskType == taskType
	})
}

func (s *memQueueStore) selectMatching(match func(*domain.QueueItem) bool) ([]*domain.QueueItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var items []*domain.QueueItem
	for _, id := range s.db.queueOrder {
		if item, ok := s.db.queue[id]; ok && match(item) {
			clone := *item
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (s *memQueueStore) CountInProgress(ctx context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	count := 0
	for _, item := range s.db.queue {
		if item.Status == domain.TaskStatusInProgress {
			count++
		}
	}
	return count, nil
}

func (s *memQueueStore) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.queue[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.db.queue, id)
	return nil
}

func (s *memQueueStore) TryClaim(ctx context.Context, id, workerID string, now time.Time) (*domain.QueueItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	item, ok := s.db.queue[id]
	if !ok || item.Status != domain.TaskStatusPending {
		return nil, nil
	}
	return claimLocked(item, workerID, now), nil
}

func (s *memQueueStore) TryClaimOldestPending(ctx context.Context, workerID string, now time.Time) (*domain.QueueItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, id := range s.db.queueOrder {
		if item, ok := s.db.queue[id]; ok && item.Status == domain.TaskStatusPending {
			return claimLocked(item, workerID, now), nil
		}
	}
	return nil, nil
}

// claimLocked mutates the stored row; the caller holds the DB mutex.
func claimLocked(item *domain.QueueItem, workerID string, now time.Time) *domain.QueueItem {
	item.Status = domain.TaskStatusInProgress
	item.WorkerID = workerID
	item.UpdatedAt = now
	started := now
	item.StartedAt = &started
	clone := *item
	return &clone
}

type memActivityStore struct {
	db *DB
}

func (s *memActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return s }

func (s *memActivityStore) Insert(ctx context.Context, record *domain.ActivityRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.activity[record.ID]; ok {
		return store.ErrDuplicate
	}
	clone := *record
	s.db.activity[record.ID] = &clone
	return nil
}

func (s *memActivityStore) GetByID(ctx context.Context, id string) (*domain.ActivityRecord, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	record, ok := s.db.activity[id]
	if !ok {
		return nil, store.ErrActivityNotFound
	}
	clone := *record
	return &clone, nil
}

type memPropertyStore struct {
	db *DB
}

func (s *memPropertyStore) WithTx(tx *sql.Tx) store.PropertyStore { return s }

func (s *memPropertyStore) Get(ctx context.Context, key string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	value, ok := s.db.properties[key]
	if !ok {
		return "", store.ErrPropertyNotFound
	}
	return value, nil
}

func (s *memPropertyStore) Set(ctx context.Context, key, value string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.properties[key] = value
	return nil
}

func (s *memPropertyStore) Delete(ctx context.Context, key string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.properties, key)
	return nil
}

type memProjectStore struct {
	db *DB
}

func (s *memProjectStore) WithTx(tx *sql.Tx) store.ProjectStore { return s }

func (s *memProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	project, ok := s.db.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	clone := *project
	return &clone, nil
}

func (s *memProjectStore) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	branch, ok := s.db.branches[id]
	if !ok {
		return nil, store.ErrBranchNotFound
	}
	clone := *branch
	return &clone, nil
}

type memUserStore struct {
	db *DB
}

func (s *memUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

func (s *memUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
