package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/clauserisk/internal/model"
)

const createAuditTable = `CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	risk TEXT NOT NULL,
	clauses INTEGER NOT NULL,
	parties TEXT NOT NULL,
	report_id TEXT,
	source TEXT
)`

// SQLiteSink appends records to the audit_log table
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (and if needed creates) the audit database
func NewSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createAuditTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}

	return &SQLiteSink{db: db, logger: logger}, nil
}

// Write inserts rec; parties are stored as a JSON array
func (s *SQLiteSink) Write(ctx context.Context, rec model.AuditRecord) error {
	parties, err := json.Marshal(rec.Parties)
	if err != nil {
		return fmt.Errorf("marshal parties: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO audit_log (time, risk, clauses, parties, report_id, source) VALUES (?, ?, ?, ?, ?, ?)",
		rec.Time, string(rec.Risk), rec.Clauses, string(parties), rec.ReportID, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	s.logger.Debug("audit record stored", "report_id", rec.ReportID, "risk", rec.Risk)
	return nil
}

// Recent returns up to limit records, newest first
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT time, risk, clauses, parties, report_id, source FROM audit_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.AuditRecord{}
	for rows.Next() {
		var (
			rec      model.AuditRecord
			risk     string
			parties  string
			reportID sql.NullString
			source   sql.NullString
		)
		if err := rows.Scan(&rec.Time, &risk, &rec.Clauses, &parties, &reportID, &source); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		rec.Risk = model.RiskLevel(risk)
		rec.ReportID = reportID.String
		rec.Source = source.String
		if err := json.Unmarshal([]byte(parties), &rec.Parties); err != nil {
			rec.Parties = []string{}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
