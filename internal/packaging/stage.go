package packaging

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Stage copies the bindings package tree, the static assets and the loose
// project files into build/<name>-<version>/ and returns the staged root.
func (p *Project) Stage() (string, error) {
	fullName, err := p.FullName()
	if err != nil {
		return "", err
	}

	pkgDir := p.packageDir()
	if _, err := os.Stat(pkgDir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrPackageDirMissing, pkgDir)
	}

	stageRoot := filepath.Join(p.buildDir(), fullName)
	if err := os.RemoveAll(stageRoot); err != nil {
		return "", err
	}
	if err := os.MkdirAll(stageRoot, 0o755); err != nil {
		return "", err
	}

	if err := copyDir(pkgDir, filepath.Join(stageRoot, p.manifest.PackageDir)); err != nil {
		return "", err
	}

	staticDir := filepath.Join(p.root, p.manifest.Frontend.StaticDir)
	if !isWithin(staticDir, pkgDir) {
		if _, err := os.Stat(staticDir); err == nil {
			if err := copyDir(staticDir, filepath.Join(stageRoot, p.manifest.Frontend.StaticDir)); err != nil {
				return "", err
			}
		}
	}

	for _, rel := range []string{p.manifest.Requirements, p.manifest.VersionFile} {
		src := filepath.Join(p.root, rel)
		if isWithin(src, pkgDir) {
			continue
		}
		info, err := os.Stat(src)
		if err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(stageRoot, rel), info.Mode().Perm()); err != nil {
			return "", err
		}
	}

	log.Info().Str("dir", stageRoot).Msg("package tree staged")
	return stageRoot, nil
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}

func copyDir(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", ErrSymlinkNotAllowed, path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src string, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}
