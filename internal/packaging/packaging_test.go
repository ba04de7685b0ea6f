package packaging

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func writeProjectFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func fixtureProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "widget/_version.py", "__version__ = '0.2.1'\n")
	writeProjectFile(t, root, "widget/__init__.py", "from ._version import __version__\n")
	writeProjectFile(t, root, "widget/static/extension.js", "define([]);\n")
	writeProjectFile(t, root, "widget/static/index.js", "export {};\n")
	writeProjectFile(t, root, "requirements.txt", "# deps\nipywidgets>=7.0.0\nnumpy\n")

	project, err := NewProject(root, testManifest())
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	return project
}

func TestProjectFullName(t *testing.T) {
	project := fixtureProject(t)
	fullName, err := project.FullName()
	if err != nil {
		t.Fatalf("full name: %v", err)
	}
	if fullName != "widget-0.2.1" {
		t.Fatalf("expected widget-0.2.1, got %q", fullName)
	}
}

func TestWriteMetadata(t *testing.T) {
	project := fixtureProject(t)
	path, err := project.WriteMetadata()
	if err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.Name != "widget" || meta.Version != "0.2.1" || meta.License != "MIT" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	want := []string{"ipywidgets>=7.0.0", "numpy"}
	if !reflect.DeepEqual(meta.Requirements, want) {
		t.Fatalf("expected requirements %v, got %v", want, meta.Requirements)
	}
}

func TestMetadataMissingVersionFile(t *testing.T) {
	root := t.TempDir()
	project, err := NewProject(root, testManifest())
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if _, err := project.Metadata(); err == nil {
		t.Fatalf("expected error for missing version file")
	}
}

func TestStageCopiesPackageTree(t *testing.T) {
	project := fixtureProject(t)
	stageRoot, err := project.Stage()
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if filepath.Base(stageRoot) != "widget-0.2.1" {
		t.Fatalf("unexpected stage root: %q", stageRoot)
	}
	for _, rel := range []string{
		"widget/_version.py",
		"widget/__init__.py",
		"widget/static/extension.js",
		"widget/static/index.js",
		"requirements.txt",
	} {
		if _, err := os.Stat(filepath.Join(stageRoot, rel)); err != nil {
			t.Fatalf("staged file missing: %s: %v", rel, err)
		}
	}
}

func TestStageRejectsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation restricted")
	}
	project := fixtureProject(t)
	link := filepath.Join(project.Root(), "widget", "evil")
	if err := os.Symlink("/etc/passwd", link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if _, err := project.Stage(); !errors.Is(err, ErrSymlinkNotAllowed) {
		t.Fatalf("expected ErrSymlinkNotAllowed, got %v", err)
	}
}

func TestStageMissingPackageDir(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "widget/_version.py", "__version__ = '0.2.1'\n")
	manifest := testManifest()
	manifest.PackageDir = "absent"
	project, err := NewProject(root, manifest)
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if _, err := project.Stage(); !errors.Is(err, ErrPackageDirMissing) {
		t.Fatalf("expected ErrPackageDirMissing, got %v", err)
	}
}

func tarEntries(t *testing.T, tarPath string) []string {
	t.Helper()
	in, err := os.Open(tarPath)
	if err != nil {
		t.Fatalf("open tarball: %v", err)
	}
	defer in.Close()
	gz, err := gzip.NewReader(in)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar next: %v", err)
		}
		names = append(names, header.Name)
	}
	return names
}

func TestSdistWritesTarballAndChecksum(t *testing.T) {
	project := fixtureProject(t)
	tarPath, err := project.Sdist()
	if err != nil {
		t.Fatalf("sdist: %v", err)
	}
	if filepath.Base(tarPath) != "widget-0.2.1.tar.gz" {
		t.Fatalf("unexpected tarball name: %q", tarPath)
	}

	names := tarEntries(t, tarPath)
	want := []string{
		"widget-0.2.1/requirements.txt",
		"widget-0.2.1/widget/__init__.py",
		"widget-0.2.1/widget/_version.py",
		"widget-0.2.1/widget/static/extension.js",
		"widget-0.2.1/widget/static/index.js",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected entries %v, got %v", want, names)
	}

	sum, err := os.ReadFile(tarPath + ".sha256")
	if err != nil {
		t.Fatalf("read checksum: %v", err)
	}
	fields := strings.Fields(string(sum))
	if len(fields) != 2 || len(fields[0]) != 64 || fields[1] != "widget-0.2.1.tar.gz" {
		t.Fatalf("unexpected checksum line: %q", string(sum))
	}
}

func TestSdistHonorsIgnorePatterns(t *testing.T) {
	project := fixtureProject(t)
	writeProjectFile(t, project.Root(), "widget/debug.log", "noise\n")
	writeProjectFile(t, project.Root(), SdistIgnoreFile, "*.log\n")

	tarPath, err := project.Sdist()
	if err != nil {
		t.Fatalf("sdist: %v", err)
	}
	for _, name := range tarEntries(t, tarPath) {
		if strings.HasSuffix(name, "debug.log") {
			t.Fatalf("ignored file packed: %s", name)
		}
	}
}
