package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clauserisk/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Clauses: []model.ClauseAnalysis{
			{Level: model.RiskLow},
			{
				Level: model.RiskHigh,
				Risks: []model.RiskFinding{
					{Category: model.RiskIndemnity},
					{Category: model.RiskPenalty},
					{Category: model.RiskArbitrationJurisdiction},
				},
			},
		},
		Score: model.Score{Overall: model.RiskMedium},
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(sampleReport(), 15*time.Millisecond)
	m.Observe(sampleReport(), 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("Medium")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.clauses.WithLabelValues("Low")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.clauses.WithLabelValues("High")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.categories.WithLabelValues("Penalty")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.categories.WithLabelValues("Auto Renewal")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestObserveFailure(t *testing.T) {
	m := New()
	m.ObserveFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe(sampleReport(), time.Second)
		m.ObserveFailure()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe(sampleReport(), time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.Contains(text, `clauserisk_documents_analyzed_total{overall="Medium"} 1`), text)
	assert.Contains(t, text, `clauserisk_risk_findings_total{category="Arbitration/Jurisdiction"} 1`)
	assert.Contains(t, text, "clauserisk_analysis_duration_seconds_bucket")
}
