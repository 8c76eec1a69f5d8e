package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// 没有原生 TTL 的后端（memory、groupcache、NATS KV 桶级 TTL 不够细）把过期时间写进值里.
// 带 TTL 的值格式: ttlPrefix + JSON{v, exp}. 不带 TTL 的值原样存储.
var ttlPrefix = []byte("FVTTL2:")

type ttlEnvelope struct {
	Value     []byte `json:"v"`
	ExpiresMs int64  `json:"exp"` // unix 毫秒
}

// encodeWithTTL 在 ttl>0 时包装值，第二个返回值表示是否包装.
func encodeWithTTL(value []byte, ttl time.Duration) ([]byte, bool, error) {
	if ttl <= 0 {
		return value, false, nil
	}

	b, err := sonic.Marshal(ttlEnvelope{Value: value, ExpiresMs: time.Now().Add(ttl).UnixMilli()})
	if err != nil {
		return nil, false, fmt.Errorf("kv: encode ttl envelope: %w", err)
	}

	out := make([]byte, 0, len(ttlPrefix)+len(b))
	out = append(out, ttlPrefix...)

	return append(out, b...), true, nil
}

// decodeWithTTL 返回 (值, 是否已过期, 是否包装, 错误). 过期时值为 nil.
func decodeWithTTL(b []byte, now time.Time) ([]byte, bool, bool, error) {
	if !bytes.HasPrefix(b, ttlPrefix) {
		return b, false, false, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(b[len(ttlPrefix):], &env); err != nil {
		return nil, false, true, fmt.Errorf("kv: decode ttl envelope: %w", err)
	}

	if env.ExpiresMs > 0 && now.UnixMilli() >= env.ExpiresMs {
		return nil, true, true, nil
	}

	return env.Value, false, true, nil
}
