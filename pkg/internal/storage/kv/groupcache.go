package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/filevault/pkg/configs"
)

// GroupcacheKV 基于 Groupcache 的 KV 实现.
// groupcache 本身不支持删除，这里给每个键维护一个代数，查询时使用 "key@gen" 作为
// groupcache 的键；Set/Delete 递增代数，旧的缓存条目自然失效.
type GroupcacheKV struct {
	cache *groupcache.Group    // Groupcache 缓存组
	peers *groupcache.HTTPPool // 对等节点池
	data  map[string][]byte    // 本地权威数据（可能带 TTL 包装）
	gens  map[string]uint64    // 键的代数
	mu    sync.RWMutex         // 保护 data 与 gens
}

// NewGroupcacheKV 创建 Groupcache KV 实例.
func NewGroupcacheKV(ctx context.Context, config any) (KVStore, error) {
	gcConfig, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Groupcache config")
	}

	kv := &GroupcacheKV{
		data: make(map[string][]byte),
		gens: make(map[string]uint64),
	}

	if g := groupcache.GetGroup(gcConfig.Name); g != nil {
		return nil, fmt.Errorf("groupcache group %q already registered", gcConfig.Name)
	}

	kv.cache = groupcache.NewGroup(gcConfig.Name, gcConfig.CacheBytes, groupcache.GetterFunc(kv.load))

	if len(gcConfig.Peers) > 0 {
		kv.peers = groupcache.NewHTTPPoolOpts(gcConfig.Self, &groupcache.HTTPPoolOptions{})
		kv.peers.Set(gcConfig.Peers...)
	}

	return kv, nil
}

// load 是 groupcache 的回源函数，去掉代数后从本地数据读取.
func (g *GroupcacheKV) load(_ context.Context, versioned string, dest groupcache.Sink) error {
	key := versioned
	if i := strings.LastIndexByte(versioned, '@'); i >= 0 {
		key = versioned[:i]
	}

	g.mu.RLock()
	value, exists := g.data[key]
	g.mu.RUnlock()

	if !exists {
		return ErrNotFound
	}

	return dest.SetBytes(value)
}

func (g *GroupcacheKV) versioned(key string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return key + "@" + strconv.FormatUint(g.gens[key], 10)
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	_, exists := g.data[key]
	g.mu.RUnlock()

	if !exists && g.peers == nil {
		return nil, ErrNotFound
	}

	var data []byte
	if err := g.cache.Get(ctx, g.versioned(key), groupcache.AllocatingByteSliceSink(&data)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, _, err := decodeWithTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)

		return nil, ErrNotFound
	}

	return append([]byte(nil), val...), nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, wrapped, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if !wrapped {
		encoded = append([]byte(nil), value...)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.data[key] = encoded
	g.gens[key]++

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, key)
	g.gens[key]++

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	raw, exists := g.data[key]
	if !exists {
		return false, nil
	}

	_, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return false, err
	}

	return !expired, nil
}

// Keys 获取匹配 glob 模式的键.
func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.data))
	for key := range g.data {
		if pattern == "" {
			keys = append(keys, key)

			continue
		}

		if matched, _ := path.Match(pattern, key); matched {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close 关闭缓存，groupcache 没有显式的关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
