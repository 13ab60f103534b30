package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedCompare(t *testing.T) {
	assert.Equal(t, int64(-1), OrderedCompare(1, 2))
	assert.Equal(t, int64(1), OrderedCompare(3, 2))
	assert.Equal(t, int64(0), OrderedCompare(2, 2))

	assert.Equal(t, int64(-1), OrderedCompare("abc", "abd"))
	assert.Equal(t, int64(0), OrderedCompare("abc", "abc"))

	assert.Equal(t, int64(1), OrderedCompare(2.5, 2.4))
}
