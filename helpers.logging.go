package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RotateWriter is a concurrent safe file-based logs writer used by the zap
// core. It rotates to a fresh file once the current one reaches the
// configured max size (in MiB).
type RotateWriter struct {
	clock Clocker
	sync.Mutex
	file   *os.File
	folder string
	max    int
	size   int64
	isProd bool
}

func NewRotateWriter(config *Config, clock Clocker) *RotateWriter {
	return &RotateWriter{
		clock:  clock,
		folder: config.LogFolder,
		max:    config.LogMaxSize,
		isProd: config.IsProduction,
	}
}

// Close closes the current log file.
func (rw *RotateWriter) Close() error {
	rw.Lock()
	defer rw.Unlock()
	if rw.file == nil {
		return nil
	}
	return rw.file.Close()
}

func (rw *RotateWriter) Sync() error {
	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Write implements io.Writer with rotation once the max file size is reached.
func (rw *RotateWriter) Write(p []byte) (n int, err error) {
	rw.Lock()
	defer rw.Unlock()
	pLen := len(p)
	if pLen > rw.max*1048576 {
		return 0, fmt.Errorf("logging: entry size %d exceeds max file size %d", pLen, rw.max)
	}
	if int64(pLen)+rw.size > int64(rw.max)*1048576 || rw.file == nil {
		if rw.file != nil {
			if err := rw.file.Close(); err != nil {
				return 0, err
			}
		}
		path := CreateLogFilePath(rw.folder, rw.isProd, rw.clock.Now())
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		rw.file = file
		rw.size = 0
	}
	n, err = rw.file.Write(p)
	rw.size += int64(pLen)
	return n, err
}

// SyncWrite wraps os.Stdout to make its Sync call a no-op. This avoids the
// usual `Handle is invalid` error when flushing a logger teed to stdout.
type SyncWrite struct {
	out *os.File
}

func (sw *SyncWrite) Sync() error {
	return nil
}

func (sw *SyncWrite) Write(p []byte) (n int, err error) {
	return sw.out.Write(p)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.LevelKey = "lvl"
	cfg.NameKey = "name"
	cfg.MessageKey = "msg"
	cfg.CallerKey = "caller"
	cfg.StacktraceKey = "skt"
	return cfg
}

// SetupLogging initializes the logging module. In production all logs go to
// the rotated file. In development the same logs are teed to standard
// output. Stacktraces are only attached to fatal level logs and every entry
// carries the build identity fields. Timestamps come from the injected
// clock: UTC in production, local time in development.
func SetupLogging(config *Config, w *RotateWriter, clock TickerClocker) (*zap.Logger, func() error) {
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig())
	var core zapcore.Core
	if config.IsProduction {
		core = zapcore.NewCore(fileEncoder, w, config.LogLevel)
	} else {
		consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig())
		core = zapcore.NewTee(
			zapcore.NewCore(fileEncoder, w, config.LogLevel),
			zapcore.NewCore(consoleEncoder, zapcore.Lock(&SyncWrite{os.Stdout}), config.LogLevel),
		)
	}
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel))
	logger = logger.WithOptions(zap.WithClock(clock))
	logger = logger.With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
	)

	flusher := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}

	return logger, flusher
}

// CreateLogFilePath returns the absolute path of the next log file.
func CreateLogFilePath(folder string, isProd bool, t time.Time) string {
	envKey := "dev"
	if isProd {
		envKey = "prod"
	}
	suffix := fmt.Sprintf("%02d%02d%02d.%02d%02d%02d.%s.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), envKey)
	return filepath.Join(folder, suffix)
}
