// Package store is the local persistent collection of owned records.
// All reads and writes go through bbolt transactions, which gives the
// engines a single confinement domain: no two mutations interleave, and
// no live record object is ever shared across goroutines.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alexjbarnes/fitsync/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	// storeDirPerm is the permission mode for the data directory (~/.fitsync/).
	storeDirPerm = fs.FileMode(0o700)

	// storeFilePerm is the permission mode for the database file.
	storeFilePerm = fs.FileMode(0o600)

	// storeOpenTimeout is the maximum time to wait for the bolt database lock.
	storeOpenTimeout = 5 * time.Second
)

var (
	appBucket       = []byte("app")
	countriesBucket = []byte("refdata:countries")
)

func ownerActivitiesBucket(ownerID string) []byte {
	return []byte("user:" + ownerID + ":activities")
}

func ownerExercisesBucket(ownerID string) []byte {
	return []byte("user:" + ownerID + ":exercises")
}

func refdataFetchKey(kind string) []byte {
	return []byte("lastFetch:" + kind)
}

// activityKey encodes a day number as a fixed-width big-endian key so
// bolt iterates activities in day order.
func activityKey(day int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(day))

	return key
}

// Store wraps a bbolt database holding owned records, reference data,
// and refresh cursors.
type Store struct {
	db *bolt.DB
}

// OpenAt opens a record database at the given path, creating it if it
// does not exist. The daemon passes its configured state path; tests
// pass an isolated temp file.
func OpenAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening record db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(appBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(countriesBucket)

		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing record db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveActivity inserts or replaces the activity for (owner, day). A save
// targeting an existing day updates that entry in place, so at most one
// record exists per key.
func (s *Store) SaveActivity(rec models.ActivityRecord) error {
	if rec.OwnerID == "" {
		return fmt.Errorf("activity record has no owner")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(ownerActivitiesBucket(rec.OwnerID))
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put(activityKey(rec.Day), data)
	})
}

// GetActivity returns the activity for (owner, day), or nil if not found.
func (s *Store) GetActivity(ownerID string, day int) (*models.ActivityRecord, error) {
	var rec *models.ActivityRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerActivitiesBucket(ownerID))
		if b == nil {
			return nil
		}

		v := b.Get(activityKey(day))
		if v == nil {
			return nil
		}

		rec = &models.ActivityRecord{}

		return json.Unmarshal(v, rec)
	})

	return rec, err
}

// DeleteActivity physically removes the activity for (owner, day).
// Only the reconciliation engine calls this; user-initiated deletes go
// through the soft-delete flags instead.
func (s *Store) DeleteActivity(ownerID string, day int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerActivitiesBucket(ownerID))
		if b == nil {
			return nil
		}

		return b.Delete(activityKey(day))
	})
}

// ActivitiesByOwner returns all activities for an owner, in day order.
func (s *Store) ActivitiesByOwner(ownerID string) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerActivitiesBucket(ownerID))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var rec models.ActivityRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			records = append(records, rec)

			return nil
		})
	})

	return records, err
}

// SaveExercise inserts or replaces the exercise for (owner, id).
func (s *Store) SaveExercise(rec models.ExerciseRecord) error {
	if rec.OwnerID == "" {
		return fmt.Errorf("exercise record has no owner")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(ownerExercisesBucket(rec.OwnerID))
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put([]byte(rec.ID.String()), data)
	})
}

// GetExercise returns the exercise for (owner, id), or nil if not found.
func (s *Store) GetExercise(ownerID string, id string) (*models.ExerciseRecord, error) {
	var rec *models.ExerciseRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerExercisesBucket(ownerID))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}

		rec = &models.ExerciseRecord{}

		return json.Unmarshal(v, rec)
	})

	return rec, err
}

// DeleteExercise physically removes the exercise for (owner, id).
func (s *Store) DeleteExercise(ownerID string, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerExercisesBucket(ownerID))
		if b == nil {
			return nil
		}

		return b.Delete([]byte(id))
	})
}

// ExercisesByOwner returns all exercises for an owner.
func (s *Store) ExercisesByOwner(ownerID string) ([]models.ExerciseRecord, error) {
	var records []models.ExerciseRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ownerExercisesBucket(ownerID))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var rec models.ExerciseRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			records = append(records, rec)

			return nil
		})
	})

	return records, err
}

// ReplaceCountries swaps the entire reference collection in one write
// transaction: either the old list survives intact or the new list is
// fully visible. A partially applied refresh is never observable.
func (s *Store) ReplaceCountries(countries []models.Country) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(countriesBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}

		b, err := tx.CreateBucket(countriesBucket)
		if err != nil {
			return err
		}

		for _, c := range countries {
			if c.Code == "" {
				return fmt.Errorf("country with empty code")
			}

			data, err := json.Marshal(c)
			if err != nil {
				return err
			}

			if err := b.Put([]byte(c.Code), data); err != nil {
				return err
			}
		}

		return nil
	})
}

// Countries returns the current reference collection.
func (s *Store) Countries() ([]models.Country, error) {
	var countries []models.Country

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(countriesBucket)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var c models.Country
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}

			countries = append(countries, c)

			return nil
		})
	})

	return countries, err
}

// CountryCount returns the number of stored countries.
func (s *Store) CountryCount() (int, error) {
	count := 0

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(countriesBucket)
		if b != nil {
			count = b.Stats().KeyN
		}

		return nil
	})

	return count, err
}

// LastRefdataFetch returns the persisted refresh cursor for a reference
// data kind, or the zero time if no fetch has succeeded yet.
func (s *Store) LastRefdataFetch(kind string) (time.Time, error) {
	var last time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(appBucket).Get(refdataFetchKey(kind))
		if v == nil {
			return nil
		}

		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			return fmt.Errorf("parsing refresh cursor for %s: %w", kind, err)
		}

		last = t

		return nil
	})

	return last, err
}

// SetLastRefdataFetch persists the refresh cursor for a reference data kind.
func (s *Store) SetLastRefdataFetch(kind string, t time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(appBucket).Put(refdataFetchKey(kind), []byte(t.Format(time.RFC3339Nano)))
	})
}
