package config

import (
	"fmt"
	"os"
)

// Template renders the starter widget.toml manifest.
func Template() string {
	return manifestTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("manifest already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(manifestTemplate), 0o644)
}

const manifestTemplate = `name = "widget"
license = "MIT"
description = "Notebook bindings for the widget viewer"
homepage = ""
keywords = ["widget"]

package_dir = "widget"
version_file = "widget/_version.py"
version_attr = "__version__"
requirements = "requirements.txt"
build_dir = "build"
dist_dir = "dist"

[frontend]
dir = "js"
static_dir = "widget/static"
targets = ["extension.js", "index.js"]
# npm_bin = "npm"
`
