package rill

import (
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// stumpyLogger adapts a logiface logger backed by stumpy's JSON writer
// to the Logger interface.
type stumpyLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

// NewStumpyLogger constructs the default structured Logger, writing
// newline-delimited JSON to w (os.Stderr if nil).
func NewStumpyLogger(w *os.File) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &stumpyLogger{
		l: stumpy.L.New(
			stumpy.L.WithStumpy(),
			stumpy.L.WithWriter(logiface.WriterFunc[*stumpy.Event](func(e *stumpy.Event) error {
				_, err := w.Write(append(e.Bytes(), '\n'))
				return err
			})),
		),
	}
}

func (s *stumpyLogger) Warn(msg string, err error) {
	b := s.l.Warning()
	if err != nil {
		b = b.Err(err)
	}
	b.Log(msg)
}
