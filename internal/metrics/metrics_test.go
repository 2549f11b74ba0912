package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLoad(t *testing.T) {
	m := New()
	m.RecordLoad("ok", 100, 20*time.Millisecond)
	m.RecordLoad("ok", 50, 10*time.Millisecond)
	m.RecordLoad("failed", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("failed")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.BytesRead))
}

func TestPrivateRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordCache(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheTotal.WithLabelValues("hit")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.EntitiesTotal.Add(42)
	m.PMIRecordsTotal.WithLabelValues("Datum").Inc()

	path := filepath.Join(t.TempDir(), "stepscan.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "stepscan_entities_total 42")
	assert.Contains(t, text, `stepscan_pmi_records_total{kind="Datum"} 1`)
	assert.True(t, strings.Contains(text, "# HELP stepscan_entities_total"))
}
