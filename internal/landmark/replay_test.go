package landmark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayFixture = `{"faces":1,"set":{"left_eye_outer":{"x":0.40,"y":0.45},"right_eye_outer":{"x":0.60,"y":0.45},"nose_bridge":{"x":0.50,"y":0.55},"face":{"x":0.35,"y":0.30,"w":0.30,"h":0.30}}}

{"faces":0}
{"faces":2,"set":{"left_eye_outer":{"x":0.42,"y":0.45},"right_eye_outer":{"x":0.62,"y":0.45},"nose_bridge":{"x":0.48,"y":0.55},"face":{"x":0.37,"y":0.30,"w":0.30,"h":0.30}}}
`

func TestReplaySource_DeliversRecordedSequence(t *testing.T) {
	src, err := NewReplaySource(strings.NewReader(replayFixture))
	require.NoError(t, err)
	require.Equal(t, 3, src.Len())

	first, err := src.Landmarks(nil)
	require.NoError(t, err)
	require.NotNil(t, first.Set)
	assert.Equal(t, 1, first.Faces)
	assert.InDelta(t, 0.40, first.Set.LeftEyeOuter.X, 1e-9)
	assert.InDelta(t, 0.50, first.Set.NoseBridge.X, 1e-9)
	assert.Equal(t, 2, src.Remaining())

	second, err := src.Landmarks(nil)
	require.NoError(t, err)
	assert.Nil(t, second.Set, "recorded no-face frame")
	assert.Equal(t, 0, second.Faces)

	third, err := src.Landmarks(nil)
	require.NoError(t, err)
	require.NotNil(t, third.Set)
	assert.Equal(t, 2, third.Faces, "multi-face count passes through for policy handling")
	assert.Equal(t, 0, src.Remaining())
}

func TestReplaySource_ExhaustionReportsNoFace(t *testing.T) {
	src, err := NewReplaySource(strings.NewReader(`{"faces":0}` + "\n"))
	require.NoError(t, err)

	_, err = src.Landmarks(nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := src.Landmarks(nil)
		require.NoError(t, err)
		assert.Nil(t, res.Set, "exhausted replay keeps reporting no face")
		assert.Zero(t, res.Faces)
	}
}

func TestReplaySource_MalformedLine(t *testing.T) {
	_, err := NewReplaySource(strings.NewReader("{\"faces\":0}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestNewReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(replayFixture), 0o644))

	src, err := NewReplayFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len())
	assert.NoError(t, src.Close())
}

func TestNewReplayFile_Missing(t *testing.T) {
	_, err := NewReplayFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening landmark replay")
}
