// Package bolt is the concrete storage.KV adapter backing the core's
// write-batch and iterator contracts (§6), built on go.etcd.io/bbolt the
// way the teacher's node/store/db.go wraps it: one bucket per entity
// kind, atomic bolt.Tx updates, and a JSON-on-disk manifest for the
// mutable tip pointer (node/store/manifest.go) written through a
// temp-file-then-rename helper.
package bolt

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pop-chain/popcore/storage"
)

var allBuckets = [][]byte{
	[]byte(storage.BucketBTCHeaders),
	[]byte(storage.BucketVBKHeaders),
	[]byte(storage.BucketALTHeaders),
	[]byte(storage.BucketVbkEndorsements),
	[]byte(storage.BucketAltEndorsements),
	[]byte(storage.BucketPayloads),
}

// Store is a storage.KV backed by a single bbolt database file plus a
// sibling MANIFEST.json for the active ALT tip, mirroring the teacher's
// DB/Manifest split (schema mutations are transactional in bolt; the tip
// pointer is a small file so an embedder can read it without opening the
// database).
type Store struct {
	dir string
	db  *bolt.DB
}

// Open opens (creating if absent) the bbolt database under dir/kv.db and
// ensures every entity bucket exists.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "kv.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("bolt: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{dir: dir, db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewBatch returns a Batch that stages puts/deletes in memory and
// commits them all inside a single bolt.Tx on Write, so a partially
// staged batch that is never written leaves the database untouched.
func (s *Store) NewBatch() storage.Batch {
	return &batch{store: s}
}

// Get reads one key from bucket, returning ok=false (not an error) when
// the key is absent.
func (s *Store) Get(bucket string, key []byte) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bolt: unknown bucket %q", bucket)
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

// Iterate returns an Iterator over every key/value pair in bucket, in
// bbolt's native byte-sorted key order, for bootstrap restore (§6).
func (s *Store) Iterate(bucket string) (storage.Iterator, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("bolt: begin iterate: %w", err)
	}
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("bolt: unknown bucket %q", bucket)
	}
	return &iterator{tx: tx, cursor: b.Cursor(), started: false}, nil
}

type batch struct {
	store *Store
	ops   []op
}

type op struct {
	bucket string
	key    []byte
	value  []byte
	delete bool
}

func (b *batch) Put(bucket string, key, value []byte) {
	b.ops = append(b.ops, op{
		bucket: bucket,
		key:    append([]byte(nil), key...),
		value:  append([]byte(nil), value...),
	})
}

func (b *batch) Delete(bucket string, key []byte) {
	b.ops = append(b.ops, op{
		bucket: bucket,
		key:    append([]byte(nil), key...),
		delete: true,
	})
}

// Write commits every staged operation inside one bolt.Tx. If any
// operation fails (e.g. an unknown bucket), none of the batch's writes
// are visible — bolt.Tx rolls back automatically on a non-nil return.
func (b *batch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	return b.store.db.Update(func(tx *bolt.Tx) error {
		for _, o := range b.ops {
			bucket := tx.Bucket([]byte(o.bucket))
			if bucket == nil {
				return fmt.Errorf("bolt: unknown bucket %q", o.bucket)
			}
			if o.delete {
				if err := bucket.Delete(o.key); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(o.key, o.value); err != nil {
				return err
			}
		}
		return nil
	})
}

type iterator struct {
	tx      *bolt.Tx
	cursor  *bolt.Cursor
	started bool
	key     []byte
	value   []byte
}

func (it *iterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		k, v = it.cursor.First()
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil {
		it.key, it.value = nil, nil
		return false
	}
	it.key = append([]byte(nil), k...)
	it.value = append([]byte(nil), v...)
	return true
}

func (it *iterator) Key() []byte   { return it.key }
func (it *iterator) Value() []byte { return it.value }
func (it *iterator) Err() error    { return nil }

func (it *iterator) Close() error {
	return it.tx.Rollback()
}
