package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is the widget.toml project manifest.
type Manifest struct {
	Name         string   `toml:"name"`
	License      string   `toml:"license"`
	Description  string   `toml:"description"`
	Homepage     string   `toml:"homepage"`
	Keywords     []string `toml:"keywords"`
	PackageDir   string   `toml:"package_dir"`
	VersionFile  string   `toml:"version_file"`
	VersionAttr  string   `toml:"version_attr"`
	Requirements string   `toml:"requirements"`
	BuildDir     string   `toml:"build_dir"`
	DistDir      string   `toml:"dist_dir"`

	Frontend FrontendConfig `toml:"frontend"`
}

// FrontendConfig locates the front-end tree and its build outputs.
type FrontendConfig struct {
	Dir       string   `toml:"dir"`
	StaticDir string   `toml:"static_dir"`
	Targets   []string `toml:"targets"`
	NPMBin    string   `toml:"npm_bin"`
}

func LoadManifest(path string) (Manifest, error) {
	var cfg Manifest
	if err := loadToml(path, &cfg); err != nil {
		return Manifest{}, err
	}
	applyDefaults(&cfg)
	if err := ValidateManifest(cfg); err != nil {
		return Manifest{}, fmt.Errorf("manifest invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Manifest) {
	if cfg.Name == "" {
		cfg.Name = "widget"
	}
	if cfg.PackageDir == "" {
		cfg.PackageDir = cfg.Name
	}
	if cfg.VersionFile == "" {
		cfg.VersionFile = filepath.Join(cfg.PackageDir, "_version.py")
	}
	if cfg.VersionAttr == "" {
		cfg.VersionAttr = "__version__"
	}
	if cfg.Requirements == "" {
		cfg.Requirements = "requirements.txt"
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = "build"
	}
	if cfg.DistDir == "" {
		cfg.DistDir = "dist"
	}
	if cfg.Frontend.Dir == "" {
		cfg.Frontend.Dir = "js"
	}
	if cfg.Frontend.StaticDir == "" {
		cfg.Frontend.StaticDir = filepath.Join(cfg.PackageDir, "static")
	}
	if len(cfg.Frontend.Targets) == 0 {
		cfg.Frontend.Targets = []string{"extension.js", "index.js"}
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("manifest load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("manifest parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateManifest(cfg Manifest) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	for field, dir := range map[string]string{
		"package_dir":         cfg.PackageDir,
		"version_file":        cfg.VersionFile,
		"requirements":        cfg.Requirements,
		"build_dir":           cfg.BuildDir,
		"dist_dir":            cfg.DistDir,
		"frontend.dir":        cfg.Frontend.Dir,
		"frontend.static_dir": cfg.Frontend.StaticDir,
	} {
		if filepath.IsAbs(dir) {
			return fmt.Errorf("%s must be relative to the project root: %q", field, dir)
		}
	}
	for i, target := range cfg.Frontend.Targets {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("frontend.targets[%d] is empty", i)
		}
		if filepath.IsAbs(target) {
			return fmt.Errorf("frontend.targets[%d] must be relative to frontend.static_dir: %q", i, target)
		}
	}
	return nil
}
