// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	golog "log"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DefaultLogger writes info and above as JSON to os.Stdout.
	DefaultLogger = NewZap(InfoLevel, os.Stdout)

	// DebugLogger writes debug and above as JSON to os.Stdout.
	DebugLogger = NewZap(DebugLevel, os.Stdout)
)

// Zap implements Logger with zap as the underlying logging library.
type Zap struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
	outputs []io.Writer
}

// enforce compilation and linter error
var _ Logger = &Zap{}

// NewZap creates a JSON zap logger writing to the given writers.
// An unknown level falls back to debug.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zap.CombineWriteSyncers(syncers...),
		toZapLevel(level),
	)

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel))

	return &Zap{
		logger:  zapLogger,
		sugar:   zapLogger.Sugar(),
		outputs: writers,
	}
}

// Debug starts a message with debug level
func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

// Info starts a message with info level
func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

// Infof starts a message with info level
func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

// Warn starts a message with warn level
func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

// Warnf starts a message with warn level
func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

// Error starts a new message with error level.
func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

// Errorf starts a new message with error level.
func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatal(v ...any) {
	z.sugar.Fatal(v...)
}

// Fatalf starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatalf(format string, v ...any) {
	z.sugar.Fatalf(format, v...)
}

// Panic starts a new message with panic level. The panic() function
// is called which stops the ordinary flow of a goroutine.
func (z *Zap) Panic(v ...any) {
	z.sugar.Panic(v...)
}

// Panicf starts a new message with panic level.
func (z *Zap) Panicf(format string, v ...any) {
	z.sugar.Panicf(format, v...)
}

// With returns a Logger that adds the given key-value pairs to every entry.
// Non-string keys are skipped and a trailing value without a key is logged under "_".
func (z *Zap) With(keyValues ...any) Logger {
	if len(keyValues) == 0 {
		return z
	}

	fields := make([]zap.Field, 0, (len(keyValues)+1)/2)
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 >= len(keyValues) {
			fields = append(fields, zap.Any("_", keyValues[i]))
			break
		}
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keyValues[i+1]))
	}

	if len(fields) == 0 {
		return z
	}

	logger := z.logger.With(fields...)
	return &Zap{
		logger:  logger,
		sugar:   logger.Sugar(),
		outputs: z.outputs,
	}
}

// LogLevel returns the log level that is used
func (z *Zap) LogLevel() Level {
	switch z.logger.Level() {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarningLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	case zapcore.PanicLevel:
		return PanicLevel
	case zapcore.FatalLevel:
		return FatalLevel
	default:
		return InvalidLevel
	}
}

// LogOutput returns the log output that is set
func (z *Zap) LogOutput() []io.Writer {
	return z.outputs
}

// StdLogger returns the standard logger associated to the logger
func (z *Zap) StdLogger() *golog.Logger {
	stdLogger, _ := zap.NewStdLogAt(z.logger, z.logger.Level())
	return stdLogger
}

// Flush syncs the underlying file outputs. Stdout and stderr are skipped.
func (z *Zap) Flush() error {
	var err error
	for _, output := range z.outputs {
		file, ok := output.(*os.File)
		if !ok || file == os.Stdout || file == os.Stderr {
			continue
		}
		err = multierr.Append(err, file.Sync())
	}
	return err
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.DebugLevel
	}
}
