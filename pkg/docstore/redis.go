package docstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "bazario:doc:"

// RedisStore keeps each document under its own redis key. Prefix listing
// uses SCAN, so listings are eventually complete but never block the
// server; writes remain strictly per-key.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore builds a store on top of an established redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Put(ctx context.Context, path string, value []byte) error {
	return r.client.Set(ctx, redisKeyPrefix+path, value, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+path).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (r *RedisStore) Delete(ctx context.Context, path string) error {
	return r.client.Del(ctx, redisKeyPrefix+path).Err()
}

func (r *RedisStore) ListPrefix(ctx context.Context, prefix string) ([]Document, error) {
	match := redisKeyPrefix + escapeMatch(prefix) + "*"
	var docs []Document

	iter := r.client.Scan(ctx, 0, match, 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		docs = append(docs, Document{
			Path:  strings.TrimPrefix(key, redisKeyPrefix),
			Value: raw,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func escapeMatch(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"?", `\?`,
		"[", `\[`,
		"]", `\]`,
	)
	return replacer.Replace(s)
}
