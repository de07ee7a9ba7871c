package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	badgerpb "github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"

	"moonhall/errors"
)

// BadgerStore persists documents in BadgerDB.
// The key is formatted as "{collection}:{id}" so that:
//  1. One prefix scan covers exactly one collection, even for nested
//     collection paths ("forums/x/topics" never matches
//     "forums/x/topics/y/posts" because the scan prefix ends at ':').
//  2. Get stays a single point lookup.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, log: log}
}

func key(collection, id string) []byte {
	return []byte(collection + ":" + id)
}

func (s *BadgerStore) Get(_ context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(collection, id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, errors.ErrNotFound)
	}
	if err != nil {
		return Document{}, err
	}
	return decode(collection, id, raw)
}

func (s *BadgerStore) Query(_ context.Context, collection string, pred Predicate, order *OrderBy, limit int) ([]Document, error) {
	var docs []Document
	prefix := []byte(collection + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				doc, err := decode(collection, id, val)
				if err != nil {
					// One unreadable value must not sink the whole query.
					s.log.Warn("Skipping undecodable document", "key", string(item.Key()), "error", err)
					return nil
				}
				if pred == nil || pred(doc) {
					docs = append(docs, doc)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if order != nil {
		sortDocs(docs, *order)
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *BadgerStore) Create(_ context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.New().String()
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(collection, id), raw)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update performs a read-merge-write inside one Badger transaction.
// Concurrent patches of the same document keep last-write-wins semantics
// at the field level, which is all the callers rely on.
func (s *BadgerStore) Update(_ context.Context, collection, id string, patch map[string]any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		current := map[string]any{}
		item, err := txn.Get(key(collection, id))
		switch err {
		case nil:
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &current)
			})
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
			// Merge against nothing: the patch becomes the document.
		default:
			return err
		}
		merge(current, patch)
		raw, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(key(collection, id), raw)
	})
}

func (s *BadgerStore) Delete(_ context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(collection, id))
	})
}

// Subscribe bridges Badger's prefix subscription to document callbacks.
// Deletions arrive as empty values and are dropped: every consumer of this
// stream re-reads or re-validates what it renders anyway.
func (s *BadgerStore) Subscribe(ctx context.Context, collection string, fn func(Document)) error {
	prefix := []byte(collection + ":")
	err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
		for _, kv := range kvs.Kv {
			if len(kv.Value) == 0 {
				continue
			}
			id := strings.TrimPrefix(string(kv.Key), string(prefix))
			doc, err := decode(collection, id, kv.Value)
			if err != nil {
				s.log.Warn("Skipping undecodable update", "key", string(kv.Key), "error", err)
				continue
			}
			fn(doc)
		}
		return nil
	}, []badgerpb.Match{{Prefix: prefix}})
	if err == context.Canceled {
		return nil
	}
	return err
}

func decode(collection, id string, raw []byte) (Document, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Document{}, err
	}
	return Document{Collection: collection, ID: id, Data: data}, nil
}

// merge applies patch onto current in place. Maps merge recursively so a
// patch touching one status effect never wipes its siblings; every other
// value replaces. A nil patch value removes the field.
func merge(current, patch map[string]any) {
	for field, value := range patch {
		if value == nil {
			delete(current, field)
			continue
		}
		patchMap, patchIsMap := value.(map[string]any)
		currentMap, currentIsMap := current[field].(map[string]any)
		if patchIsMap && currentIsMap {
			merge(currentMap, patchMap)
			continue
		}
		current[field] = value
	}
}

func sortDocs(docs []Document, order OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		less := lessByField(docs[i], docs[j], order.Field)
		if order.Desc {
			return !less && !equalByField(docs[i], docs[j], order.Field)
		}
		return less
	})
}

func lessByField(a, b Document, field string) bool {
	if _, ok := a.Data[field].(string); ok {
		return a.String(field) < b.String(field)
	}
	return a.Int64(field) < b.Int64(field)
}

func equalByField(a, b Document, field string) bool {
	if _, ok := a.Data[field].(string); ok {
		return a.String(field) == b.String(field)
	}
	return a.Int64(field) == b.Int64(field)
}
