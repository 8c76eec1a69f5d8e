package model

import (
	"fmt"
)

// StorageKind 存储后端类型，集合固定.
type StorageKind string

const (
	StorageLocal  StorageKind = "local"
	StorageObject StorageKind = "object"
)

// Locator 指向文件字节所在位置：本地相对路径或对象键，二者恰有一个非空.
type Locator struct {
	Kind StorageKind `json:"kind"`
	Path string      `json:"path,omitempty"` // 相对于本地根目录
	Key  string      `json:"key,omitempty"`  // 对象键
}

// LocalLocator 构造本地文件定位符.
func LocalLocator(path string) Locator {
	return Locator{Kind: StorageLocal, Path: path}
}

// ObjectLocator 构造对象存储定位符.
func ObjectLocator(key string) Locator {
	return Locator{Kind: StorageObject, Key: key}
}

// Validate 检查定位符与后端类型一致.
func (l Locator) Validate() error {
	switch l.Kind {
	case StorageLocal:
		if l.Path == "" || l.Key != "" {
			return fmt.Errorf("local locator must carry only a path")
		}
	case StorageObject:
		if l.Key == "" || l.Path != "" {
			return fmt.Errorf("object locator must carry only a key")
		}
	default:
		return fmt.Errorf("unknown storage kind %q", l.Kind)
	}

	return nil
}

// String 便于日志输出.
func (l Locator) String() string {
	if l.Kind == StorageLocal {
		return "local:" + l.Path
	}

	return string(l.Kind) + ":" + l.Key
}
