package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"next_read/models"
)

var (
	bucketSessions = []byte("sessions")
	keyUpdatedAt   = []byte("updated_at")
)

// BoltDB is an on-disk session database holding one sub-bucket per session id.
type BoltDB struct {
	db     *bolt.DB
	maxAge time.Duration
	now    func() time.Time
}

// OpenBolt opens (or creates) the session database at path.
func OpenBolt(path string, maxAge time.Duration) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure session dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &BoltDB{db: db, maxAge: maxAge, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// Session returns the store for one session id.
func (b *BoltDB) Session(id string) *BoltStore {
	return &BoltStore{db: b, id: []byte(id)}
}

// Sessions lists the stored session ids.
func (b *BoltDB) Sessions() ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(k []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// PurgeExpired removes sessions last saved before the freshness window and returns how many went.
func (b *BoltDB) PurgeExpired() (int, error) {
	cutoff := b.now().Add(-b.maxAge)
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		if root == nil {
			return nil
		}
		var stale [][]byte
		if err := root.ForEachBucket(func(k []byte) error {
			if updated, ok := readUpdatedAt(root.Bucket(k)); !ok || updated.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := root.DeleteBucket(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// BoltStore persists one session in a BoltDB.
type BoltStore struct {
	db *BoltDB
	id []byte
}

// Load returns the saved state, or empty state when nothing was saved or the record is past the freshness window.
func (s *BoltStore) Load(ctx context.Context) (models.SessionState, error) {
	var hist, scores []byte
	var updated time.Time
	var found bool

	err := s.db.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		if root == nil {
			return nil
		}
		b := root.Bucket(s.id)
		if b == nil {
			return nil
		}
		// bbolt slices are only valid within tx
		hist = copyBytes(b.Get([]byte(HistoryKey)))
		scores = copyBytes(b.Get([]byte(ScoresKey)))
		updated, found = readUpdatedAt(b)
		return nil
	})
	if err != nil {
		return models.NewSessionState(), &PersistenceError{Op: "load", Err: err}
	}
	if !found || s.db.now().Sub(updated) > s.db.maxAge {
		return models.NewSessionState(), nil
	}

	state, err := decodeState(hist, scores)
	if err != nil {
		return state, err
	}
	state.UpdatedAt = updated
	return state, nil
}

// Save writes both blobs and the save time in one transaction.
func (s *BoltStore) Save(ctx context.Context, state models.SessionState) error {
	hist, scores, err := encodeState(state)
	if err != nil {
		return err
	}
	stamp, err := s.db.now().UTC().MarshalText()
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	err = s.db.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketSessions)
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists(s.id)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(HistoryKey), hist); err != nil {
			return err
		}
		if err := b.Put([]byte(ScoresKey), scores); err != nil {
			return err
		}
		return b.Put(keyUpdatedAt, stamp)
	})
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Delete drops the session record.
func (s *BoltStore) Delete() error {
	return s.db.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		if root == nil || root.Bucket(s.id) == nil {
			return nil
		}
		return root.DeleteBucket(s.id)
	})
}

func readUpdatedAt(b *bolt.Bucket) (time.Time, bool) {
	if b == nil {
		return time.Time{}, false
	}
	v := b.Get(keyUpdatedAt)
	if v == nil {
		return time.Time{}, false
	}
	var t time.Time
	if err := t.UnmarshalText(v); err != nil {
		return time.Time{}, false
	}
	return t, true
}

func copyBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
