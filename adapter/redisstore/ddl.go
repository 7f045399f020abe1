package redisstore

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	"github.com/redis/go-redis/v9"
)

// Define writes collection's attribute set, JSON-encoded, to its schema
// key. Redis
// has no native DDL, so "creating a table" here means only recording
// the schema the Facade will later Describe back.
func (s *Store) Define(ctx context.Context, collection string, attrs types.Attributes) error {
	b, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrap(err, "redisstore: marshal schema")
	}
	if err := s.rdb.Set(ctx, s.schemaKey(collection), b, 0).Err(); err != nil {
		return errors.Wrapf(err, "redisstore: define %q", collection)
	}
	return nil
}

// Describe reads collection's schema key, or (nil, nil) if it was
// never defined.
func (s *Store) Describe(ctx context.Context, collection string) (types.Attributes, error) {
	raw, err := s.rdb.Get(ctx, s.schemaKey(collection)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redisstore: describe %q", collection)
	}
	var attrs types.Attributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, errors.Wrap(err, "redisstore: unmarshal schema")
	}
	return attrs, nil
}

// Drop removes collection's schema, counter, id index, and every
// record key.
func (s *Store) Drop(ctx context.Context, collection string) error {
	ids, err := s.rdb.ZRange(ctx, s.idsKey(collection), 0, -1).Result()
	if err != nil {
		return errors.Wrapf(err, "redisstore: drop %q: list ids", collection)
	}
	keys := []string{s.schemaKey(collection), s.idsKey(collection), s.seqKey(collection)}
	for _, idStr := range ids {
		keys = append(keys, s.prefix+":"+collection+":"+idStr)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "redisstore: drop %q", collection)
	}
	return nil
}

// AddAttribute extends collection's stored schema. Existing records
// simply lack the new field until next written — Redis hashes tolerate
// missing fields without error, read back as the zero value.
func (s *Store) AddAttribute(ctx context.Context, collection string, attr types.Attribute) error {
	attrs, err := s.Describe(ctx, collection)
	if err != nil {
		return err
	}
	if attrs == nil {
		return types.ErrNoSuchCollection
	}
	attrs[attr.Name] = attr
	return s.Define(ctx, collection, attrs)
}

// RemoveAttribute drops attr from collection's schema and scrubs the
// field from every existing record.
func (s *Store) RemoveAttribute(ctx context.Context, collection string, name string) error {
	attrs, err := s.Describe(ctx, collection)
	if err != nil {
		return err
	}
	if attrs == nil {
		return types.ErrNoSuchCollection
	}
	delete(attrs, name)
	if err := s.Define(ctx, collection, attrs); err != nil {
		return err
	}

	ids, err := s.rdb.ZRange(ctx, s.idsKey(collection), 0, -1).Result()
	if err != nil {
		return errors.Wrapf(err, "redisstore: remove attribute %q.%q: list ids", collection, name)
	}
	for _, idStr := range ids {
		if err := s.rdb.HDel(ctx, s.prefix+":"+collection+":"+idStr, name).Err(); err != nil {
			return errors.Wrapf(err, "redisstore: remove attribute %q.%q", collection, name)
		}
	}
	return nil
}
