package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter 实现 watermill.LoggerAdapter. watermill 的 Info 很啰嗦，统一降为 Debug.
type zerologAdapter struct {
	l *zerolog.Logger
}

// NewLogger 把 zerolog 包装成 watermill 日志器.
func NewLogger(l *zerolog.Logger) watermill.LoggerAdapter {
	return &zerologAdapter{l: l}
}

func (z *zerologAdapter) emit(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	if len(fields) > 0 {
		ev = ev.Fields(map[string]any(fields))
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	z.emit(z.l.Error().Err(err), msg, fields)
}

func (z *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	z.emit(z.l.Debug(), msg, fields)
}

func (z *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	z.emit(z.l.Debug(), msg, fields)
}

func (z *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	z.emit(z.l.Trace(), msg, fields)
}

func (z *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	l := z.l.With().Fields(map[string]any(fields)).Logger()

	return &zerologAdapter{l: &l}
}

func (z *zerologAdapter) String() string { return "zerolog-watermill" }
