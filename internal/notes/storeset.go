package notes

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// StoreSet hands out one Store per user, each in its own file under a
// shared data directory.
type StoreSet struct {
	dir  string
	opts []Option

	mu     sync.Mutex
	stores map[string]*Store
}

func NewStoreSet(dataDir string, opts ...Option) *StoreSet {
	return &StoreSet{dir: dataDir, opts: opts, stores: make(map[string]*Store)}
}

// For returns the store of userID, opening it on first use. The same Store
// is returned on every call so its lock covers all requests of that user.
func (ss *StoreSet) For(userID string) (*Store, error) {
	if userID == "" || userID == "." || userID == ".." || strings.ContainsAny(userID, `/\`) {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if s, ok := ss.stores[userID]; ok {
		return s, nil
	}
	s, err := Open(filepath.Join(ss.dir, "notes_"+userID+".json"), ss.opts...)
	if err != nil {
		return nil, err
	}
	ss.stores[userID] = s
	return s, nil
}
