package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/filevault/pkg/configs"
)

// NATSKV 基于 JetStream KV 桶. 桶只有统一的 MaxAge，单键 TTL 写在值里.
type NATSKV struct {
	conn *nats.Conn
	kv   nats.KeyValue
	now  func() time.Time
}

// NewNATSKV 连接 NATS 并绑定桶，桶不存在时创建.
func NewNATSKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS config")
	}

	opts := []nats.Option{nats.Name("filevault-kv")}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	bucket, err := js.KeyValue(cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		bucket, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      cfg.Bucket,
			Description: "filevault cache",
			History:     1,
			TTL:         cfg.MaxAge,
		})
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to bind KV bucket %s: %w", cfg.Bucket, err)
	}

	return &NATSKV{conn: nc, kv: bucket, now: time.Now}, nil
}

// lookup 读取并解包，已过期的条目顺手删除.
func (n *NATSKV) lookup(key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get %s: %w", key, err)
	}

	val, expired, _, err := decodeWithTTL(entry.Value(), n.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)

		return nil, ErrNotFound
	}

	return val, nil
}

func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	return n.lookup(key)
}

func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Exists(_ context.Context, key string) (bool, error) {
	_, err := n.lookup(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 列出桶内未过期且匹配 pattern 的键.
func (n *NATSKV) Keys(_ context.Context, pattern string) ([]string, error) {
	all, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	keys := make([]string, 0, len(all))

	for _, k := range all {
		if pattern != "" {
			if ok, _ := path.Match(pattern, k); !ok {
				continue
			}
		}

		if _, err := n.lookup(k); err == nil {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func (n *NATSKV) Close() error {
	n.conn.Close()

	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
