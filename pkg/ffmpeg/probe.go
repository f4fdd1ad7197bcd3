package ffmpeg

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// ProbeArgs returns the ffprobe arguments that print the container duration
// of path as a bare number.
func ProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1:nk=1",
		path,
	}
}

// ProbeDuration obtains the duration in seconds of path using ffprobe.
// Output that can't be parsed as a finite number yields 0, so callers must
// check for a positive value. An error is only returned when ffprobe couldn't
// be run.
func ProbeDuration(ctx context.Context, r Runner, ffprobe, path string) (float64, error) {
	res, err := r.Run(ctx, ffprobe, ProbeArgs(path)...)
	if err != nil {
		return 0, err
	}
	return ParseDuration(string(res.Stdout)), nil
}

// ParseDuration parses ffprobe's bare duration output.
func ParseDuration(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}
