package packaging

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	ignore "github.com/sabhiram/go-gitignore"
)

// SdistIgnoreFile holds optional gitignore-syntax exclude patterns applied
// when packing the source distribution.
const SdistIgnoreFile = ".sdistignore"

// Sdist stages the package tree and packs it into
// dist/<name>-<version>.tar.gz with a .sha256 sidecar. Entry order is
// deterministic.
func (p *Project) Sdist() (string, error) {
	stageRoot, err := p.Stage()
	if err != nil {
		return "", err
	}
	fullName := filepath.Base(stageRoot)

	matcher, err := p.sdistMatcher()
	if err != nil {
		return "", err
	}
	entries, err := collectEntries(stageRoot, matcher)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.distDir(), 0o755); err != nil {
		return "", err
	}
	tarPath := filepath.Join(p.distDir(), fullName+".tar.gz")
	if err := writeTarball(tarPath, stageRoot, fullName, entries); err != nil {
		return "", err
	}
	sumPath, err := writeChecksum(tarPath)
	if err != nil {
		return "", err
	}

	log.Info().Str("tarball", tarPath).Str("checksum", sumPath).Int("files", len(entries)).Msg("source distribution written")
	return tarPath, nil
}

func (p *Project) sdistMatcher() (*ignore.GitIgnore, error) {
	path := filepath.Join(p.root, SdistIgnoreFile)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("packaging: parse %s: %w", SdistIgnoreFile, err)
	}
	return matcher, nil
}

// collectEntries lists the staged files as sorted slash-relative paths,
// dropping anything the exclude matcher rejects.
func collectEntries(stageRoot string, matcher *ignore.GitIgnore) ([]string, error) {
	var entries []string
	err := filepath.WalkDir(stageRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == stageRoot {
			return nil
		}
		rel, err := filepath.Rel(stageRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matcher != nil && matcher.MatchesPath(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

func writeTarball(tarPath string, stageRoot string, prefix string, entries []string) error {
	out, err := os.Create(tarPath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, rel := range entries {
		src := filepath.Join(stageRoot, filepath.FromSlash(rel))
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = prefix + "/" + rel
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		in, err := os.Open(src)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, in); err != nil {
			in.Close()
			return err
		}
		in.Close()
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// writeChecksum writes a sha256sum-style sidecar next to the tarball.
func writeChecksum(tarPath string) (string, error) {
	in, err := os.Open(tarPath)
	if err != nil {
		return "", err
	}
	defer in.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, in); err != nil {
		return "", err
	}

	sumPath := tarPath + ".sha256"
	line := fmt.Sprintf("%x  %s\n", hash.Sum(nil), filepath.Base(tarPath))
	if err := os.WriteFile(sumPath, []byte(line), 0o644); err != nil {
		return "", err
	}
	return sumPath, nil
}
