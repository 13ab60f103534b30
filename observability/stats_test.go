package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeterName(t *testing.T) {
	assert.Equal(t, "kuserspace/app/default", meterName(""))
	assert.Equal(t, "kuserspace/app/default", meterName("  "))
	assert.Equal(t, "kuserspace/app/list", meterName("list"))
}

func TestConsoleMetricsExporter(t *testing.T) {
	shutdown, err := InitConsoleMetricsExporter(100*time.Millisecond, time.Second)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	stats, err := NewAppStats("observability-test")
	require.NoError(t, err)
	assert.NotNil(t, stats)
}
