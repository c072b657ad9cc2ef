package fs

import (
	"bytes"
	"fmt"
	iofs "io/fs"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxCollectBytes caps the total size of the files Collect includes.
const MaxCollectBytes = 256 << 10

// Collect reads the files under root matching any of patterns and formats
// them as the content of a system message. Binary files are skipped, and
// collection stops before MaxCollectBytes would be exceeded.
func Collect(root string, patterns ...string) (string, error) {
	r, err := os.OpenRoot(root)
	if err != nil {
		return "", fmt.Errorf("fs: %w", err)
	}
	defer r.Close()
	fsys := r.FS()

	seen := make(map[string]bool)
	var (
		b     strings.Builder
		total int
	)
	b.WriteString("The following project files are provided as context.\n")
	for _, p := range patterns {
		matches, err := match(fsys, p)
		if err != nil {
			return "", fmt.Errorf("fs: %w", err)
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			data, err := iofs.ReadFile(fsys, path)
			if err != nil {
				return "", fmt.Errorf("fs: read %s: %w", path, err)
			}
			if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
				continue
			}
			if total+len(data) > MaxCollectBytes {
				return b.String(), nil
			}
			total += len(data)
			fmt.Fprintf(&b, "\n<file path=%q>\n%s", path, data)
			if !bytes.HasSuffix(data, []byte("\n")) {
				b.WriteByte('\n')
			}
			b.WriteString("</file>\n")
		}
	}
	return b.String(), nil
}
