// Package memory implements the repository interfaces in process memory.
// The semantics (not-found errors, unique join codes, one join request per
// user and team, version checks on update) match the postgres package.
package memory

import (
	"sync"

	"github.com/aidar/taskmanager/internal/domain"
)

// Store holds every record kind behind one lock. Records are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users    map[string]*domain.User
	teams    map[int64]*domain.Team
	tasks    map[int64]*domain.Task
	requests map[int64]*domain.JoinRequest

	nextTeamID    int64
	nextTaskID    int64
	nextRequestID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		teams:    make(map[int64]*domain.Team),
		tasks:    make(map[int64]*domain.Task),
		requests: make(map[int64]*domain.JoinRequest),
	}
}
