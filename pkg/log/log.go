// Package log 提供基于 zerolog 的全局日志，stderr 输出可选 console 或 json，
// 可同时写入 lumberjack 轮转文件.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/filevault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按全局配置初始化 logger，并同步设置 gin 的运行模式.
func Init() {
	initOnce.Do(initLogger)
}

func initLogger() {
	cfg := configs.GetConfig()

	logger = New(cfg.Log, cfg.Server.Debug, os.Stderr)
	log.Logger = logger
	zerolog.SetGlobalLevel(logger.GetLevel())

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// New 根据配置构建 logger. debug 模式额外记录调用位置.
func New(cfg configs.LogConfig, debug bool, stderr io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(stderr, "invalid log level %q, using info\n", cfg.Level)
		}

		lvl = zerolog.InfoLevel
	}

	out := stderr
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = stderr
			w.TimeFormat = time.Kitchen
		})
	}

	if cfg.EnableFile {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", "filevault")
	if debug {
		ctx = ctx.Caller()
	}

	return ctx.Logger().Level(lvl)
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

// Component 返回带 component 字段的子 logger，供存储、任务等长期组件持有.
func Component(name string) *zerolog.Logger {
	l := Logger().With().Str("component", name).Logger()

	return &l
}

// GinWriter 把 gin 自身打印的文本行转为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 创建以固定级别输出的 GinWriter.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	w.logger.WithLevel(w.level).Str("source", "gin").Msg(msg)

	return len(p), nil
}
