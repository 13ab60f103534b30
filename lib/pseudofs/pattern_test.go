package pseudofs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meminfoSample = `MemTotal:       16316412 kB
MemFree:         8112348 kB
MemAvailable:   12508312 kB
Buffers:          499804 kB
Cached:          3610440 kB
SwapTotal:       2097148 kB
SwapFree:        2097148 kB
HugePages_Total:       0
HugePages_Free:        0
Hugepagesize:       2048 kB
DirectMap4k:      316096 kB
`

const cpuinfoSample = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) CPU @ 2.30GHz
physical id	: 0
core id		: 0
processor	: 1
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) CPU @ 2.30GHz
physical id	: 0
core id		: 1
`

func TestExtractLine(t *testing.T) {
	x := NewExtractor()
	v, err := x.ExtractLine("MemTotal:       16316412 kB", PatternMemTotal)
	require.NoError(t, err)
	assert.Equal(t, "16316412", v)

	_, err = x.ExtractLine("MemFree:         8112348 kB", PatternMemTotal)
	assert.True(t, errors.Is(err, ErrNoMatch))

	_, err = x.ExtractLine("whatever", "([unclosed")
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	// No capture group falls back to the whole match.
	v, err = x.ExtractLine("abc123", `\d+`)
	require.NoError(t, err)
	assert.Equal(t, "123", v)
}

func TestExtractValues(t *testing.T) {
	path := writeTempFile(t, "cpuinfo", cpuinfoSample)
	x := NewExtractor()
	cores, err := x.ExtractValues(path, PatternCPUProcessor)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, cores)

	models, err := x.ExtractValues(path, PatternCPUModelName)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Contains(t, models[0], "Xeon")

	_, err = x.ExtractValues(path+"-missing", PatternCPUProcessor)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestExtractMap(t *testing.T) {
	path := writeTempFile(t, "meminfo", meminfoSample)
	x := NewExtractor()
	pairs, err := x.ExtractMap(path, PatternRowKey, PatternRowValue)
	require.NoError(t, err)
	assert.Equal(t, "16316412", pairs["MemTotal"])
	assert.Equal(t, "2048", pairs["Hugepagesize"])
	assert.Equal(t, "0", pairs["HugePages_Total"])
}

func TestExtractFunc(t *testing.T) {
	path := writeTempFile(t, "meminfo", meminfoSample)
	x := NewExtractor()
	matched := 0
	err := x.ExtractFunc(path, PatternRowValue, func(line string, groups []string) {
		require.Greater(t, len(groups), 1)
		matched++
	})
	require.NoError(t, err)
	assert.Equal(t, 11, matched)

	assert.Error(t, x.ExtractFunc(path, PatternRowValue, nil))
}

func TestExtractorCache(t *testing.T) {
	x := NewExtractor()
	_, _ = x.ExtractLine("a", `a`)
	_, _ = x.ExtractLine("b", `b`)
	_, _ = x.ExtractLine("aa", `a`)
	assert.Equal(t, 2, x.CachedPatterns())
	x.PurgeCache()
	assert.Equal(t, 0, x.CachedPatterns())
}
