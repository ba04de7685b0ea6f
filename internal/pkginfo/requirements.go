package pkginfo

import (
	"fmt"
	"os"
	"strings"
)

// Requirements reads a plain-text dependency list: one specifier per line,
// blank lines and '#' comment lines dropped, order preserved.
func Requirements(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pkginfo: read requirements (%s): %w", path, err)
	}

	var reqs []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reqs = append(reqs, line)
	}
	return reqs, nil
}
