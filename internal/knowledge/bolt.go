package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketPrompts = []byte("prompts")

// keyPrefix makes the empty prompt a valid bbolt key.
const keyPrefix = 'p'

func promptKey(prompt string) []byte {
	key := make([]byte, 0, len(prompt)+1)
	key = append(key, keyPrefix)
	return append(key, prompt...)
}

// boltRecord is the value stored under each prompt key. Seq records the
// order in which the prompt was first saved; bbolt itself iterates keys in
// byte order.
type boltRecord struct {
	Seq       uint64     `json:"seq"`
	Responses *Responses `json:"responses"`
}

// BoltStore persists the knowledge base in a bbolt database, one key per
// prompt. Saves are transactional: a crash mid-write cannot corrupt
// previously committed data.
type BoltStore struct {
	db     *bolt.DB
	path   string
	logger *zap.Logger
}

// NewBoltStore opens (or creates) a bbolt database at path.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPrompts)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}

	return &BoltStore{db: db, path: path, logger: logger}, nil
}

// Load reads all prompts ordered by their first-save sequence.
func (s *BoltStore) Load() (*Knowledge, error) {
	type item struct {
		prompt string
		rec    boltRecord
	}
	var items []item

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrompts)
		if b == nil {
			return &LoadError{Kind: NotFound, Path: s.path}
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) == 0 || k[0] != keyPrefix {
				return &LoadError{Kind: Corrupt, Path: s.path, Err: fmt.Errorf("unexpected key %q", k)}
			}
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return &LoadError{Kind: Corrupt, Path: s.path, Err: fmt.Errorf("prompt %q: %w", k[1:], err)}
			}
			// Keys are only valid within the transaction; string() copies.
			items = append(items, item{prompt: string(k[1:]), rec: rec})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].rec.Seq < items[j].rec.Seq
	})

	k := New()
	for _, it := range items {
		k.Set(it.prompt, it.rec.Responses)
	}
	return k, nil
}

// Save writes every prompt in partial in one transaction, keeping the
// sequence number of prompts already stored.
func (s *BoltStore) Save(partial *Knowledge) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketPrompts)
		if err != nil {
			return err
		}

		for _, prompt := range partial.Prompts() {
			key := promptKey(prompt)
			r, _ := partial.Get(prompt)
			rec := boltRecord{Responses: r}

			if existing := b.Get(key); existing != nil {
				var prev boltRecord
				if err := json.Unmarshal(existing, &prev); err == nil {
					rec.Seq = prev.Seq
				} else {
					s.logger.Warn("overwriting undecodable prompt record", zap.String("prompt", prompt), zap.Error(err))
				}
			}
			if rec.Seq == 0 {
				seq, err := b.NextSequence()
				if err != nil {
					return err
				}
				rec.Seq = seq
			}

			value, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal prompt %q: %w", prompt, err)
			}
			if err := b.Put(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
