package pkginfo

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

// DefaultVersionAttr is the assignment name searched for when the manifest
// does not name one.
const DefaultVersionAttr = "__version__"

var ErrVersionNotFound = errors.New("pkginfo: version assignment not found")

// Version extracts the quoted string assigned to attr in the file at path.
// The assignment must start a line; single and double quotes are accepted.
func Version(path string, attr string) (string, error) {
	attr = strings.TrimSpace(attr)
	if attr == "" {
		attr = DefaultVersionAttr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("pkginfo: read version file (%s): %w", path, err)
	}

	pattern, err := regexp.Compile(`(?m)^` + regexp.QuoteMeta(attr) + `\s*=\s*['"]([^'"]*)['"]`)
	if err != nil {
		return "", fmt.Errorf("pkginfo: bad version attr %q: %w", attr, err)
	}
	match := pattern.FindSubmatch(data)
	if match == nil {
		return "", fmt.Errorf("%w: attr=%q file=%s", ErrVersionNotFound, attr, path)
	}

	version := string(match[1])
	if _, err := semver.NewVersion(version); err != nil {
		log.Warn().Str("version", version).Str("file", path).Msg("extracted version is not valid semver")
	}
	return version, nil
}
