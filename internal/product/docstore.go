package product

import (
	"context"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/productgate/config"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	docRootBucket   = "products"
	seedWorkerCount = 8
)

// DocStore is the document backend: one nested bucket per userId
// partition, items keyed by id and stored as free-form JSON documents.
// No cross-entity validation happens here; a product may reference a
// user the users-api has never heard of.
type DocStore struct {
	db   *bolt.DB
	pool *ants.Pool
}

// OpenDocStore opens (or creates) the document store file
func OpenDocStore(path string) (*DocStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open document store")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(docRootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init document store")
	}

	pool, err := ants.NewPool(seedWorkerCount)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DocStore{db: db, pool: pool}, nil
}

func (s *DocStore) Close() error {
	s.pool.Release()
	return s.db.Close()
}

func (s *DocStore) Backend() string {
	return config.BackendCosmos
}

// Create inserts a new document. The id is caller-supplied; numeric ids
// are coerced to their string form before use as the item key.
func (s *DocStore) Create(_ context.Context, in CreateInput) (*Product, error) {
	id := cast.ToString(in.ID)
	price, ok := coercePrice(in.Price)
	if id == "" || strings.TrimSpace(in.Name) == "" || in.UserID == "" || !ok {
		return nil, Errorf(KindValidation, "id, name, price, userId are required")
	}

	doc := map[string]interface{}{
		"id":     id,
		"name":   in.Name,
		"price":  price,
		"userId": in.UserID,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		part, err := partition(tx, in.UserID, true)
		if err != nil {
			return err
		}
		if part.Get([]byte(id)) != nil {
			return Errorf(KindStorage, "item %s already exists", id)
		}
		return putDoc(part, id, doc)
	})
	if err != nil {
		return nil, storeErr(err, "create item failed")
	}
	return decodeDoc(doc)
}

// List returns exactly the items under one partition, in key order
func (s *DocStore) List(_ context.Context, userID string) ([]Product, error) {
	if userID == "" {
		return nil, Errorf(KindValidation, "userId is required")
	}

	out := make([]Product, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		part, err := partition(tx, userID, false)
		if err != nil || part == nil {
			return err
		}
		return part.ForEach(func(_, v []byte) error {
			var doc map[string]interface{}
			if err := json.Unmarshal(v, &doc); err != nil {
				return errors.Wrap(err, "corrupt item")
			}
			p, err := decodeDoc(doc)
			if err != nil {
				return err
			}
			out = append(out, *p)
			return nil
		})
	})
	if err != nil {
		return nil, storeErr(err, "query failed")
	}
	return out, nil
}

// Get is not part of this backend's surface; items are addressed only
// through their partition.
func (s *DocStore) Get(_ context.Context, _ string) (*Product, error) {
	return nil, Errorf(KindNotFound, "product not found")
}

// Update merges the provided fields over the stored document and
// upserts the result. The read and write share one transaction, so
// concurrent updates serialize: last write wins, never a torn merge.
// An absent item is created with the merged fields.
func (s *DocStore) Update(_ context.Context, id string, in UpdateInput) (*Product, error) {
	if in.UserID == "" {
		return nil, Errorf(KindValidation, "userId is required")
	}
	var (
		price    float64
		hasPrice bool
	)
	if in.Price != nil {
		var ok bool
		if price, ok = coercePrice(in.Price); !ok {
			return nil, Errorf(KindValidation, "price must be numeric")
		}
		hasPrice = true
	}

	var merged map[string]interface{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		part, err := partition(tx, in.UserID, true)
		if err != nil {
			return err
		}

		doc := map[string]interface{}{"id": id, "userId": in.UserID}
		if raw := part.Get([]byte(id)); raw != nil {
			if err := json.Unmarshal(raw, &doc); err != nil {
				return errors.Wrap(err, "corrupt item")
			}
		}
		if in.Name != nil {
			doc["name"] = *in.Name
		}
		if hasPrice {
			doc["price"] = price
		}
		merged = doc
		return putDoc(part, id, doc)
	})
	if err != nil {
		return nil, storeErr(err, "upsert failed")
	}
	return decodeDoc(merged)
}

// Delete requires the partition key to address the item
func (s *DocStore) Delete(_ context.Context, id, userID string) (*DeleteResult, error) {
	if userID == "" {
		return nil, Errorf(KindValidation, "userId is required")
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		part, err := partition(tx, userID, false)
		if err != nil {
			return err
		}
		if part == nil || part.Get([]byte(id)) == nil {
			return Errorf(KindNotFound, "product not found")
		}
		return part.Delete([]byte(id))
	})
	if err != nil {
		return nil, storeErr(err, "delete failed")
	}
	// this backend answers deletes with no body
	return nil, nil
}

// Seed bulk-upserts the embedded fixture set under one partition. Each
// fixture is written by a pooled worker; per-id last write wins, so the
// operation is repeatable.
func (s *DocStore) Seed(_ context.Context, userID string) (int, error) {
	fixtures, err := loadFixtures()
	if err != nil {
		return 0, WrapErr(KindStorage, err, "fixture data unreadable")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, f := range fixtures {
		f := f
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.upsertFixture(userID, f); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			return 0, WrapErr(KindStorage, err, "seed worker submit failed")
		}
	}
	wg.Wait()

	if firstErr != nil {
		return 0, storeErr(firstErr, "seed failed")
	}
	return len(fixtures), nil
}

func (s *DocStore) upsertFixture(userID string, f fixture) error {
	doc := map[string]interface{}{
		"id":     cast.ToString(f.ID),
		"name":   f.Name,
		"price":  f.Price,
		"userId": userID,
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		part, err := partition(tx, userID, true)
		if err != nil {
			return err
		}
		return putDoc(part, cast.ToString(f.ID), doc)
	})
}

// Ping runs a trivial read transaction against the store file
func (s *DocStore) Ping(_ context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(docRootBucket)) == nil {
			return errors.New("root bucket missing")
		}
		return nil
	})
}

func partition(tx *bolt.Tx, userID string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket([]byte(docRootBucket))
	if root == nil {
		return nil, errors.New("root bucket missing")
	}
	if create {
		return root.CreateBucketIfNotExists([]byte(userID))
	}
	return root.Bucket([]byte(userID)), nil
}

func putDoc(part *bolt.Bucket, id string, doc map[string]interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return part.Put([]byte(id), raw)
}

// decodeDoc projects a free-form document onto the wire type. Unknown
// fields stay in storage and survive merges, but only the contract
// fields are exposed.
func decodeDoc(doc map[string]interface{}) (*Product, error) {
	var p Product
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, WrapErr(KindStorage, err, "decode item failed")
	}
	if err := dec.Decode(doc); err != nil {
		return nil, WrapErr(KindStorage, err, "decode item failed")
	}
	return &p, nil
}

// storeErr keeps already-kinded errors intact and wraps raw driver
// failures as storage faults.
func storeErr(err error, message string) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapErr(KindStorage, err, message)
}
