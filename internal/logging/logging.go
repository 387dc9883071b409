// Package logging builds the diagnostic logger. Logs go to stderr so they
// never mix with results written to stdout.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/panbanda/pctl/pkg/config"
)

// New returns a logger writing to stderr at the configured level.
func New(cfg config.LogConfig, color bool) (*zap.Logger, error) {
	return newLogger(zapcore.AddSync(os.Stderr), cfg, color)
}

// NewWriter is New with an arbitrary destination.
func NewWriter(w io.Writer, cfg config.LogConfig) (*zap.Logger, error) {
	return newLogger(zapcore.AddSync(w), cfg, false)
}

func newLogger(ws zapcore.WriteSyncer, cfg config.LogConfig, color bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = jsonEncoder()
	default:
		encoder = humanEncoder(color)
	}

	return zap.New(
		zapcore.NewCore(encoder, ws, level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).Named("pctl"), nil
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func humanEncoder(showColors bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	if showColors {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg.StacktraceKey = ""
	cfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}
