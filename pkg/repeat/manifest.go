package repeat

import (
	"fmt"
	"strings"

	"github.com/google/renameio/v2"
)

// ManifestName is the file name of the concat manifest in the working
// directory.
const ManifestName = "concat_list.txt"

// Manifest returns a concat demuxer playlist listing input n times.
func Manifest(input string, n int) string {
	line := fmt.Sprintf("file '%s'\n", quote(input))
	return strings.Repeat(line, n)
}

// quote escapes single quotes the way the concat demuxer expects inside a
// single quoted string: close, escaped quote, reopen.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

// WriteManifest writes the playlist for input repeated n times to path.
// The file is replaced atomically.
func WriteManifest(path, input string, n int) error {
	if strings.ContainsAny(input, "\r\n") {
		return fmt.Errorf("repeat: input path %q contains a line break", input)
	}
	if err := renameio.WriteFile(path, []byte(Manifest(input, n)), 0644); err != nil {
		return fmt.Errorf("repeat: couldn't write manifest: %w", err)
	}
	return nil
}
