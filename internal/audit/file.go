package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/clauserisk/internal/model"
)

const fileTimeLayout = "20060102_150405"

// FileSink writes each record to <dir>/log_<YYYYMMDD_HHMMSS>.json.
// Records landing in the same second get a numeric suffix instead of
// overwriting each other.
type FileSink struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewFileSink creates a file sink rooted at dir
func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	if dir == "" {
		dir = "logs"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{dir: dir, logger: logger, now: time.Now}
}

// Write stores rec as indented JSON
func (s *FileSink) Write(ctx context.Context, rec model.AuditRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	stamp := s.now().Format(fileTimeLayout)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := "log_" + stamp + ".json"
		if n > 1 {
			name = fmt.Sprintf("log_%s_%d.json", stamp, n)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create audit file: %w", err)
		}

		_, werr := f.Write(data)
		cerr := f.Close()
		if werr != nil {
			return fmt.Errorf("write audit file: %w", werr)
		}
		if cerr != nil {
			return fmt.Errorf("close audit file: %w", cerr)
		}

		s.logger.Debug("audit record written", "path", path, "risk", rec.Risk)
		return nil
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *FileSink) Recent(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit < 0 {
		limit = 0
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, "log_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list audit files: %w", err)
	}

	infos := make([]fileInfo, 0, len(paths))
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{path: p, mod: st.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].mod.Equal(infos[j].mod) {
			return infos[i].mod.After(infos[j].mod)
		}
		return infos[i].path > infos[j].path
	})

	capacity := len(infos)
	if limit > 0 {
		capacity = min(limit, capacity)
	}
	records := make([]model.AuditRecord, 0, capacity)
	for _, fi := range infos {
		if limit > 0 && len(records) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(fi.path)
		if err != nil {
			s.logger.Warn("skipping unreadable audit file", "path", fi.path, "error", err)
			continue
		}
		var rec model.AuditRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("skipping malformed audit file", "path", fi.path, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Close is a no-op for the file sink
func (s *FileSink) Close() error {
	return nil
}

type fileInfo struct {
	path string
	mod  time.Time
}
