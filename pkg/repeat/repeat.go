// Package repeat plans how a clip is repeated to fill a target duration.
package repeat

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Count returns how many copies of a source clip are needed to cover target
// seconds. It is never less than 1.
func Count(target, source float64) int {
	if !(target > 0) || !(source > 0) {
		return 1
	}
	n := math.Ceil(target / source)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// OutputPath returns the default output file name for input when looped to
// target seconds: <stem>_loop_<minutes>min.<ext>, minutes being rounded.
func OutputPath(input string, target float64) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	if ext == base {
		// Dotfiles like ".clip" are all stem
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "output"
	}
	if ext == "" {
		ext = "mov"
	}
	mins := math.Round(target / 60)
	if !(mins > 0) {
		mins = 0
	}
	return fmt.Sprintf("%s_loop_%dmin.%s", stem, int64(mins), ext)
}
