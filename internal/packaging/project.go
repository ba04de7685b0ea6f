package packaging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vizlab/widgetctl/internal/config"
	"github.com/vizlab/widgetctl/internal/pkginfo"
)

var (
	ErrSymlinkNotAllowed = errors.New("packaging: symlinks are not allowed in the package tree")
	ErrPackageDirMissing = errors.New("packaging: package directory missing")
)

// Project binds one project root to its manifest and resolves the paths the
// lifecycle steps work on.
type Project struct {
	root     string
	manifest config.Manifest
}

func NewProject(root string, manifest config.Manifest) (*Project, error) {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		resolved = wd
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, err
	}
	return &Project{root: abs, manifest: manifest}, nil
}

func (p *Project) Root() string              { return p.root }
func (p *Project) Manifest() config.Manifest { return p.manifest }

// Version reads the bindings version through the manifest's version file.
func (p *Project) Version() (string, error) {
	return pkginfo.Version(filepath.Join(p.root, p.manifest.VersionFile), p.manifest.VersionAttr)
}

// Requirements reads the declared dependency specifiers.
func (p *Project) Requirements() ([]string, error) {
	return pkginfo.Requirements(filepath.Join(p.root, p.manifest.Requirements))
}

// FullName is the versioned distribution name, <name>-<version>.
func (p *Project) FullName() (string, error) {
	version, err := p.Version()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", p.manifest.Name, version), nil
}

func (p *Project) buildDir() string {
	return filepath.Join(p.root, p.manifest.BuildDir)
}

func (p *Project) distDir() string {
	return filepath.Join(p.root, p.manifest.DistDir)
}

func (p *Project) packageDir() string {
	return filepath.Join(p.root, p.manifest.PackageDir)
}

// IsRepo reports whether the project root is a git checkout. Unpacked source
// distributions are not; their shipped assets are final.
func (p *Project) IsRepo() bool {
	_, err := os.Stat(filepath.Join(p.root, ".git"))
	return err == nil
}
