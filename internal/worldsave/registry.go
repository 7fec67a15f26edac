package worldsave

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// PlayerRegistry tracks which player names the server has ever seen
// and when they last connected — session-scoped bookkeeping, not
// world/chunk data, so it's kept in BadgerDB (as the teacher's
// internal/storage.WorldStorage does for all of its state) rather
// than in the text-file tree: it's written by name on every login,
// not round-tripped wholesale like a chunk or world.conf.
type PlayerRegistry struct {
	db *badger.DB
}

// OpenPlayerRegistry opens (creating if absent) a BadgerDB at
// root/known_players.
func OpenPlayerRegistry(root string) (*PlayerRegistry, error) {
	opts := badger.DefaultOptions(root + "/known_players")
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("worldsave: open player registry: %w", err)
	}
	return &PlayerRegistry{db: db}, nil
}

func (r *PlayerRegistry) Close() error { return r.db.Close() }

// Touch records name as seen at t, inserting it if new.
func (r *PlayerRegistry) Touch(name string, t time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		val, err := t.MarshalBinary()
		if err != nil {
			return err
		}
		return txn.Set([]byte("player:"+name), val)
	})
}

// Known reports whether name has connected before, and if so when it
// was last seen.
func (r *PlayerRegistry) Known(name string) (time.Time, bool, error) {
	var last time.Time
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("player:" + name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return last.UnmarshalBinary(val)
		})
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("worldsave: lookup player %q: %w", name, err)
	}
	return last, found, nil
}
