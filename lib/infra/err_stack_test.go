package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caller() Frame {
	var pcs [1]uintptr
	runtime.Callers(1, pcs[:])
	return Frame(pcs[0])
}

func TestFrameFormat(t *testing.T) {
	frame := caller()
	assert.Equal(t, "err_stack_test.go", fmt.Sprintf("%s", frame))
	assert.Equal(t, "caller", fmt.Sprintf("%n", frame))
	assert.True(t, strings.HasPrefix(fmt.Sprintf("%v", frame), "err_stack_test.go:"))

	assert.Equal(t, "unknownFile", fmt.Sprintf("%s", Frame(0)))
	assert.Equal(t, "unknownFunc", fmt.Sprintf("%n", Frame(0)))
	assert.Equal(t, "0", fmt.Sprintf("%d", Frame(0)))
}

func TestFrameMarshal(t *testing.T) {
	_bytes, err := Frame(0).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, []byte("unknownFrame"), _bytes)

	_bytes, err = Frame(0).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, []byte("{\"frame\":\"unknownFrame\"}"), _bytes)

	_bytes, err = caller().MarshalText()
	require.NoError(t, err)
	assert.Contains(t, string(_bytes), "err_stack_test.go")
}

func TestNewErrorStack(t *testing.T) {
	err := NewErrorStack("boom")
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	var es *ErrorStack
	require.True(t, errors.As(err, &es))
	assert.Greater(t, len(es.Frames()), 0)
	assert.Contains(t, fmt.Sprintf("%+v", es), "err_stack_test.go")
}

func TestWrapErrorStack(t *testing.T) {
	assert.Nil(t, WrapErrorStack(nil))

	sentinel := errors.New("sentinel")
	err := WrapErrorStack(sentinel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "sentinel", err.Error())

	// Re-wrapping keeps the deepest stack.
	assert.Equal(t, err, WrapErrorStack(err))
}

func TestWrapErrorStackWithMessage(t *testing.T) {
	assert.Nil(t, WrapErrorStackWithMessage(nil, ""))

	sentinel := errors.New("sentinel")
	err := WrapErrorStackWithMessage(sentinel, "outer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "outer: sentinel", err.Error())

	err = WrapErrorStackWithMessage(nil, "message only")
	require.Error(t, err)
	assert.Equal(t, "message only", err.Error())
}
