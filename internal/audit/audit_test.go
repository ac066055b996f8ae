package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clauserisk/internal/model"
)

func record(risk model.RiskLevel, clauses int, parties ...string) model.AuditRecord {
	if parties == nil {
		parties = []string{}
	}
	return model.AuditRecord{
		Time:    "2026-03-01T10:00:00Z",
		Risk:    risk,
		Clauses: clauses,
		Parties: parties,
	}
}

func TestFileSink_WriteNaming(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	sink := NewFileSink(dir, nil)
	sink.now = func() time.Time { return time.Date(2026, 3, 1, 10, 4, 5, 0, time.UTC) }

	require.NoError(t, sink.Write(context.Background(), record(model.RiskMedium, 2, "Acme Corp")))

	path := filepath.Join(dir, "log_20260301_100405.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Medium", got["risk"])
	assert.Equal(t, float64(2), got["clauses"])
	assert.Equal(t, []interface{}{"Acme Corp"}, got["parties"])
	assert.Equal(t, "2026-03-01T10:00:00Z", got["time"])
	assert.Contains(t, string(data), "\n  \"", "record should be indented")
}

func TestFileSink_SameSecondDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, nil)
	sink.now = func() time.Time { return time.Date(2026, 3, 1, 10, 4, 5, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Write(context.Background(), record(model.RiskLow, i)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.FileExists(t, filepath.Join(dir, "log_20260301_100405_2.json"))
	assert.FileExists(t, filepath.Join(dir, "log_20260301_100405_3.json"))
}

func TestFileSink_Recent(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, nil)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		sink.now = func() time.Time { return ts }
		require.NoError(t, sink.Write(context.Background(), record(model.RiskLow, i)))
		name := filepath.Join(dir, "log_"+ts.Format(fileTimeLayout)+".json")
		require.NoError(t, os.Chtimes(name, ts, ts))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log_garbage.json"), []byte("{"), 0o644))

	recs, err := sink.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 3, recs[0].Clauses)
	assert.Equal(t, 2, recs[1].Clauses)

	all, err := sink.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 4, "malformed files are skipped")
}

func TestRecent_NegativeLimitReturnsAll(t *testing.T) {
	ctx := context.Background()

	fileSink := NewFileSink(t.TempDir(), nil)
	sqliteSink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	defer func() { _ = sqliteSink.Close() }()

	for name, sink := range map[string]Sink{"file": fileSink, "sqlite": sqliteSink} {
		t.Run(name, func(t *testing.T) {
			recs, err := sink.Recent(ctx, -1)
			require.NoError(t, err)
			assert.Empty(t, recs)

			require.NoError(t, sink.Write(ctx, record(model.RiskLow, 1)))
			require.NoError(t, sink.Write(ctx, record(model.RiskHigh, 3)))

			recs, err = sink.Recent(ctx, -5)
			require.NoError(t, err)
			assert.Len(t, recs, 2)
		})
	}
}

func TestFileSink_RecentEmptyDir(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing"), nil)
	recs, err := sink.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	sink, err := NewSQLiteSink(path, nil)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	first := record(model.RiskHigh, 7, "Acme Corp", "Globex Ltd")
	first.ReportID = "r-1"
	first.Source = "vendor.pdf"
	require.NoError(t, sink.Write(ctx, first))
	require.NoError(t, sink.Write(ctx, record(model.RiskLow, 1)))

	recs, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, model.RiskLow, recs[0].Risk)
	assert.Equal(t, []string{}, recs[0].Parties)

	assert.Equal(t, model.RiskHigh, recs[1].Risk)
	assert.Equal(t, 7, recs[1].Clauses)
	assert.Equal(t, []string{"Acme Corp", "Globex Ltd"}, recs[1].Parties)
	assert.Equal(t, "r-1", recs[1].ReportID)
	assert.Equal(t, "vendor.pdf", recs[1].Source)

	limited, err := sink.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSink(model.AuditConfig{Backend: "file", Dir: dir}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, s)

	s, err = NewSink(model.AuditConfig{Backend: "sqlite", SQLitePath: filepath.Join(dir, "a.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSink{}, s)
	require.NoError(t, s.Close())

	_, err = NewSink(model.AuditConfig{Backend: "s3"}, nil)
	assert.Error(t, err)
}
