// Package store is the template library. Templates are kept in a bbolt
// database file, one msgpack-encoded record per template.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/thistle-tpl/thistle/pkg/logutil"
	. "github.com/thistle-tpl/thistle/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend for templates.
type DBStore interface {
	Store
	Close() error
}

type dbStore struct {
	db   *bolt.DB
	path string
}

// NewStore opens the database at path, creating it if needed.
func NewStore(path string) (DBStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Println("opened", path)
	return &dbStore{db, path}, nil
}

// Close closes the database.
func (s *dbStore) Close() error {
	logger.Println("closing", s.path)
	return s.db.Close()
}
