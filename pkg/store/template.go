package store

import (
	"fmt"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	. "github.com/thistle-tpl/thistle/pkg/store/storedefs"
)

const bucketTemplate = "template"

func init() {
	initDB["initialize template table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketTemplate))
		return err
	}
}

// The stored form of a template. The name is the key.
type record struct {
	Source   string    `msgpack:"source"`
	Revision uint64    `msgpack:"rev"`
	Updated  time.Time `msgpack:"updated"`
}

// PutTemplate adds a template or replaces its source.
func (s *dbStore) PutTemplate(name, src string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTemplate))
		rev, err := b.NextSequence()
		if err != nil {
			return err
		}
		v, err := msgpack.Marshal(record{src, rev, time.Now().UTC()})
		if err != nil {
			return err
		}
		return b.Put([]byte(name), v)
	})
}

// Template returns the source of a template.
func (s *dbStore) Template(name string) (string, error) {
	t, err := s.TemplateInfo(name)
	return t.Source, err
}

// TemplateInfo returns a template and its metadata.
func (s *dbStore) TemplateInfo(name string) (Template, error) {
	var r record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketTemplate)).Get([]byte(name))
		if v == nil {
			return ErrNoTemplate
		}
		return msgpack.Unmarshal(v, &r)
	})
	if err != nil {
		return Template{}, err
	}
	rev, err := safecast.Conv[int](r.Revision)
	if err != nil {
		return Template{}, fmt.Errorf("template %s: revision %d: %w", name, r.Revision, err)
	}
	return Template{name, r.Source, rev, r.Updated}, nil
}

// DelTemplate deletes a template.
func (s *dbStore) DelTemplate(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTemplate))
		if b.Get([]byte(name)) == nil {
			return ErrNoTemplate
		}
		return b.Delete([]byte(name))
	})
}

// Names returns the names of all templates in lexical order.
func (s *dbStore) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTemplate)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
