package sysinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemReader_Snapshot(t *testing.T) {
	reader, err := NewSystemReader(WithMeminfoPath("testdata/meminfo"))
	require.NoError(t, err)

	snapshot, err := reader.Snapshot()
	require.NoError(t, err)
	assert.Greater(t, snapshot.Memory.Total, uint64(0))
	assert.NotEmpty(t, snapshot.Processor.PerCoreUtilization)
	assert.False(t, snapshot.TakenAt.IsZero())

	require.NoError(t, reader.Close())
}
