package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.SettingsLookup(SourceCache)
	m.SettingsLookup(SourceCache)
	m.SettingsLookup(SourceEnv)
	m.SettingsStoreError()
	m.StorageOp("put", nil, 10*time.Millisecond, 42)
	m.StorageOp("put", errors.New("boom"), time.Millisecond, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.settingsLookups.WithLabelValues(SourceCache)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsLookups.WithLabelValues(SourceEnv)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsStoreErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageRequests.WithLabelValues("put", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageRequests.WithLabelValues("put", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("put")))
}

func TestMetrics_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SettingsLookup(SourceStore)
		m.SettingsStoreError()
		m.StorageOp("delete", nil, time.Second, 0)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "not_configured", Outcome(&common.ConfigurationError{Missing: []string{"storage.BUCKET"}}))
	assert.Equal(t, "error", Outcome(&common.StorageError{Op: "put", Err: errors.New("x")}))
}
