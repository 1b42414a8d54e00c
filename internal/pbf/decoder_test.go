package pbf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	nodes int
	ways  int
}

func (h *countingHandler) HandleNode(Node) bool { h.nodes++; return true }
func (h *countingHandler) HandleWay(Way) bool   { h.ways++; return true }

func TestDecodeMissingFile(t *testing.T) {
	dec := NewDecoder()
	err := dec.Decode(context.Background(), filepath.Join(t.TempDir(), "absent.osm.pbf"), &countingHandler{})
	assert.Error(t, err)
}

func TestDecodeCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.osm.pbf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a protobuf blob at all, not even close"), 0o644))

	dec := NewDecoder()
	h := &countingHandler{}
	err := dec.Decode(context.Background(), path, h)
	assert.Error(t, err)
	assert.Zero(t, h.nodes)
	assert.Zero(t, h.ways)
}

func TestDecodeCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.osm.pbf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDecoder().Decode(ctx, path, &countingHandler{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsMemoryError(t *testing.T) {
	assert.False(t, IsMemoryError(nil))
	assert.False(t, IsMemoryError(errors.New("unexpected EOF")))
	assert.True(t, IsMemoryError(errors.New("std::bad_alloc")))
	assert.True(t, IsMemoryError(errors.New("cannot allocate memory")))
	assert.True(t, IsMemoryError(errors.New("Out Of Memory")))
}
