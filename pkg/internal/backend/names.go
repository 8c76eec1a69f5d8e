package backend

import (
	"path/filepath"
	"strings"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// uniqueVariant 在扩展名前插入唯一后缀：a.txt -> a.<ulid>.txt.
func uniqueVariant(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	return base + "." + model.NewSuffix() + ext
}
