// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package dievent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lord2800/di/internal/direflect"
)

var _ Logger = (*zapLogger)(nil)

type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger into an event Logger.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{logger: logger}
}

func (l *zapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case BoundEvent:
		l.logger.Info("bound", zap.String("key", e.Key))
	case RegisteredEvent:
		for _, rtype := range direflect.ReturnTypes(e.Constructor) {
			l.logger.Info("registered constructor",
				zap.String("key", e.Key),
				zap.String("constructor", direflect.FuncName(e.Constructor)),
				zap.String("type", rtype),
			)
		}
	case InstantiatedEvent:
		l.logger.Info("instantiated", zap.String("key", e.Key))
	case ProvidedEvent:
		if e.TypeKey != "" {
			l.logger.Info("provided",
				zap.String("name", e.Name),
				zap.String("type", e.TypeKey),
			)
		} else {
			l.logger.Info("provided", zap.String("name", e.Name))
		}
	case DelegatedEvent:
		l.logger.Info("delegated",
			zap.String("name", e.Name),
			zap.Bool("replaced", e.Replaced),
		)
	case AnnotatedEvent:
		l.logger.Info("annotated", zap.String("target", e.Target))
	case ResolveErrorEvent:
		l.logger.Error("resolution failed",
			zap.String("key", e.Key),
			zap.Error(e.Err),
		)
	default:
		l.logger.Info("event", zap.String("type", fmt.Sprintf("%T", event)))
	}
}
