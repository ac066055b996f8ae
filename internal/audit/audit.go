// Package audit persists one structured record per finished analysis.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Sink stores audit records and lists the most recent ones
type Sink interface {
	Write(ctx context.Context, rec model.AuditRecord) error
	Recent(ctx context.Context, limit int) ([]model.AuditRecord, error)
	Close() error
}

// NewSink opens the sink selected by cfg.Backend
func NewSink(cfg model.AuditConfig, logger *slog.Logger) (Sink, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileSink(cfg.Dir, logger), nil
	case "sqlite":
		return NewSQLiteSink(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown audit backend: %s (supported: file, sqlite)", cfg.Backend)
	}
}
