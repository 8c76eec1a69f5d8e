package model

import (
	crand "crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(crand.Reader, 0)
)

// NewID 生成按时间有序的 ULID，用作记录主键.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewSuffix 生成小写 ULID，用于磁盘或对象键去重后缀.
func NewSuffix() string {
	return strings.ToLower(NewID())
}
