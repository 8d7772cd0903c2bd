package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fragkeeper/internal/logging"
)

// BadgerLogger forwards badger's printf-style output to a Logger.
// It satisfies badger.Logger.
type BadgerLogger struct {
	log logging.Logger
}

func NewBadgerLogger(log logging.Logger) *BadgerLogger {
	return &BadgerLogger{log: log}
}

func format(f string, v ...any) string {
	return strings.TrimRight(fmt.Sprintf(f, v...), "\n")
}

func (b *BadgerLogger) Errorf(f string, v ...any) {
	b.log.Error(context.Background(), format(f, v...))
}

func (b *BadgerLogger) Warningf(f string, v ...any) {
	b.log.Warn(context.Background(), format(f, v...))
}

func (b *BadgerLogger) Infof(f string, v ...any) {
	b.log.Info(context.Background(), format(f, v...))
}

func (b *BadgerLogger) Debugf(f string, v ...any) {
	b.log.Debug(context.Background(), format(f, v...))
}
