package security

import (
	"sync"

	"github.com/google/uuid"
)

// In-memory deny list of deactivated users. It is rebuilt from the users
// table at startup and updated when an admin toggles an account.
var (
	muDenied  sync.RWMutex
	denyUsers = make(map[uuid.UUID]struct{})
)

// User denylist API
func DenyUser(id uuid.UUID)  { muDenied.Lock(); denyUsers[id] = struct{}{}; muDenied.Unlock() }
func AllowUser(id uuid.UUID) { muDenied.Lock(); delete(denyUsers, id); muDenied.Unlock() }
func IsUserDenied(id uuid.UUID) bool {
	muDenied.RLock()
	_, ok := denyUsers[id]
	muDenied.RUnlock()
	return ok
}

// Reset replaces the list with ids.
func Reset(ids ...uuid.UUID) {
	muDenied.Lock()
	defer muDenied.Unlock()
	denyUsers = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		denyUsers[id] = struct{}{}
	}
}
