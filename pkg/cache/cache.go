// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 序列化为 JSON，TTL 交给底层 KV 实现.
// 缓存只是加速手段：底层 KV 不可用时 GetOrSet 会直接回源，不把错误抛给调用方.
// 同一个 Cache 上并发未命中的同一键只回源一次.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore, "user")
//	u, err := cache.GetOrSet(ctx, c, "email:a@x.com", func() (User, error) {
//	    return loadUser(ctx, "a@x.com")
//	}, 5*time.Minute)
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = kv.ErrNotFound

// Cache 基于KV存储的缓存实现，所有键带 prefix 命名空间.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	loads   singleflight.Group
}

// NewCache 创建一个新的缓存实例，kvStore 为 nil 时所有读取都未命中.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}

	return c.prefix + ":" + k
}

// Get 泛型获取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	if c == nil || c.kvStore == nil {
		return zero, ErrMiss
	}

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	if c == nil || c.kvStore == nil {
		return nil
	}

	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.kvStore == nil {
		return nil
	}

	if err := c.kvStore.Delete(ctx, c.key(key)); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	return nil
}

// GetOrSet 获取缓存值，未命中（或缓存读取失败）时调用 getter 并回填.
// getter 的错误原样返回，回填失败被忽略.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	if c == nil {
		return getter()
	}

	v, err, _ := c.loads.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})

	value, _ := v.(T)

	return value, err
}
