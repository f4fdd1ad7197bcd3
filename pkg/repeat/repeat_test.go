package repeat

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name           string
		target, source float64
		want           int
	}{
		{"partial last copy", 60, 13, 5},
		{"exact", 60, 60, 1},
		{"exact multiple", 120, 30, 4},
		{"target shorter", 60, 90, 1},
		{"zero target", 0, 10, 1},
		{"negative target", -5, 10, 1},
		{"nan target", math.NaN(), 10, 1},
		{"zero source", 60, 0, 1},
		{"tiny source", 1, 0.3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.target, tt.source))
		})
	}
}

func TestCountCovers(t *testing.T) {
	for _, source := range []float64{0.5, 1, 2.7, 13, 59.9, 61} {
		for _, target := range []float64{1, 30, 60, 125, 3600} {
			n := Count(target, source)
			assert.GreaterOrEqual(t, n, 1)
			assert.GreaterOrEqual(t, float64(n)*source, target)
			if n > 1 {
				assert.Less(t, float64(n-1)*source, target)
			}
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		target float64
		want   string
	}{
		{"clip.mov", 125, "clip_loop_2min.mov"},
		{"clip.mp4", 60, "clip_loop_1min.mp4"},
		{"videos/holiday.mkv", 600, "holiday_loop_10min.mkv"},
		{"clip", 60, "clip_loop_1min.mov"},
		{"clip.mp4", 20, "clip_loop_0min.mp4"},
		{"clip.mp4", 90, "clip_loop_2min.mp4"},
		{"", 60, "output_loop_1min.mov"},
		{".clip", 60, ".clip_loop_1min.mov"},
		{"dir/.clip.mp4", 60, ".clip_loop_1min.mp4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.input, tt.target), "input %q", tt.input)
	}
}

func TestManifest(t *testing.T) {
	assert.Equal(t, "file 'clip.mp4'\nfile 'clip.mp4'\nfile 'clip.mp4'\n", Manifest("clip.mp4", 3))
	assert.Equal(t, "file '/tmp/it'\\''s.mp4'\n", Manifest("/tmp/it's.mp4", 1))
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)

	require.NoError(t, WriteManifest(path, "clip.mp4", 3))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file 'clip.mp4'\nfile 'clip.mp4'\nfile 'clip.mp4'\n", string(b))

	// Overwrites a previous manifest and leaves no temporary files behind
	require.NoError(t, WriteManifest(path, "other.mp4", 1))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file 'other.mp4'\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteManifestLineBreak(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)

	assert.Error(t, WriteManifest(path, "bad\nname.mp4", 2))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
