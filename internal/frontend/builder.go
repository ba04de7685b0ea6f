package frontend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vizlab/widgetctl/internal/config"
	"github.com/vizlab/widgetctl/internal/tools"
)

var (
	ErrTargetsMissing = errors.New("frontend: build targets missing")
	ErrBuildFailed    = errors.New("frontend: npm build failed")
)

const npmGuidance = "npm is required to build a development version of the widget extension"

// Builder drives the front-end asset build: probe npm, install dependencies
// when the local cache is absent, run the build, verify the bundle targets.
type Builder struct {
	dir     string
	targets []string
	npmBin  string
	runner  tools.CommandRunner
	stdout  io.Writer
	stderr  io.Writer
}

// BuilderConfig wires a builder to one project root. Runner and the output
// writers default to the local exec runner and the process streams.
type BuilderConfig struct {
	Root     string
	Frontend config.FrontendConfig
	Runner   tools.CommandRunner
	Stdout   io.Writer
	Stderr   io.Writer
}

func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	fe := cfg.Frontend
	if fe.Dir == "" {
		fe.Dir = "js"
	}
	if fe.StaticDir == "" {
		fe.StaticDir = "static"
	}
	if len(fe.Targets) == 0 {
		return nil, fmt.Errorf("frontend: no build targets configured")
	}

	staticDir := filepath.Join(rootAbs, fe.StaticDir)
	targets := make([]string, 0, len(fe.Targets))
	for _, target := range fe.Targets {
		targets = append(targets, filepath.Join(staticDir, target))
	}

	runner := cfg.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Builder{
		dir:     filepath.Join(rootAbs, fe.Dir),
		targets: targets,
		npmBin:  strings.TrimSpace(fe.NPMBin),
		runner:  runner,
		stdout:  stdout,
		stderr:  stderr,
	}, nil
}

// NPMName resolves the package manager binary, npm.cmd on Windows.
func (b *Builder) NPMName() string {
	if b.npmBin != "" {
		return b.npmBin
	}
	if runtime.GOOS == "windows" {
		return "npm.cmd"
	}
	return "npm"
}

// NodeModules is the dependency cache directory of the frontend tree.
func (b *Builder) NodeModules() string {
	return filepath.Join(b.dir, "node_modules")
}

// Targets returns the absolute bundle paths the build must produce.
func (b *Builder) Targets() []string {
	out := make([]string, len(b.targets))
	copy(out, b.targets)
	return out
}

// MissingTargets returns the configured targets that do not exist on disk.
func (b *Builder) MissingTargets() []string {
	var missing []string
	for _, target := range b.targets {
		if _, err := os.Stat(target); err != nil {
			missing = append(missing, target)
		}
	}
	return missing
}

// Available probes the package manager in version-query mode. Any failure,
// including a missing binary, reports false; nothing propagates past the
// probe.
func (b *Builder) Available() bool {
	npm := b.NPMName()
	stdout, _, exit, err := b.runner.Run(tools.Command{Name: npm, Args: []string{"--version"}})
	if err != nil {
		log.Debug().Str("npm", npm).Int32("exit", exit).Err(err).Msg("npm probe failed")
		return false
	}
	log.Debug().Str("npm", npm).Str("version", strings.TrimSpace(string(stdout))).Msg("npm available")
	return true
}

// ShouldInstall reports whether the dependency install step must run: npm is
// available and the dependency cache directory is absent.
func (b *Builder) ShouldInstall() bool {
	return b.Available() && !b.nodeModulesExists()
}

func (b *Builder) nodeModulesExists() bool {
	_, err := os.Stat(b.NodeModules())
	return err == nil
}

// Build runs the asset build sequence. npm absence alone is logged, not
// fatal; it surfaces only through the final target check, with guidance
// appended.
func (b *Builder) Build() error {
	available := b.Available()
	if !available {
		log.Error().Msg("`npm` unavailable; when running under sudo, make sure npm is available to sudo")
	}

	npm := b.NPMName()
	env := b.subprocessEnv()

	if available {
		if !b.nodeModulesExists() {
			log.Info().Str("dir", b.dir).Msg("installing build dependencies with npm; this may take a while")
			install := tools.Command{Name: npm, Args: []string{"install"}, Dir: b.dir, Env: env}
			if err := b.runner.RunStreaming(install, b.stdout, b.stderr); err != nil {
				return fmt.Errorf("%w: npm install dir=%s: %w", ErrBuildFailed, b.dir, err)
			}
			b.touchNodeModules()
		}

		build := tools.Command{Name: npm, Args: []string{"run", "build"}, Dir: b.dir, Env: env}
		if err := b.runner.RunStreaming(build, b.stdout, b.stderr); err != nil {
			return fmt.Errorf("%w: npm run build dir=%s: %w", ErrBuildFailed, b.dir, err)
		}
	}

	return b.verifyTargets(available)
}

func (b *Builder) verifyTargets(available bool) error {
	missing := b.MissingTargets()
	if len(missing) == 0 {
		return nil
	}
	if !available {
		return fmt.Errorf("%w: %s\n%s", ErrTargetsMissing, strings.Join(missing, ", "), npmGuidance)
	}
	return fmt.Errorf("%w: %s", ErrTargetsMissing, strings.Join(missing, ", "))
}

// subprocessEnv copies the process environment with the frontend's local bin
// directory prepended to PATH; the mutation applies to the subprocess only.
func (b *Builder) subprocessEnv() []string {
	binDir := filepath.Join(b.NodeModules(), ".bin")
	augmented := binDir + string(os.PathListSeparator) + os.Getenv("PATH")

	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	replaced := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			out = append(out, "PATH="+augmented)
			replaced = true
			continue
		}
		out = append(out, kv)
	}
	if !replaced {
		out = append(out, "PATH="+augmented)
	}
	return out
}

// touchNodeModules bumps the cache directory mtime after a successful
// install so later freshness checks see it as current.
func (b *Builder) touchNodeModules() {
	now := time.Now()
	if err := os.Chtimes(b.NodeModules(), now, now); err != nil {
		log.Warn().Str("dir", b.NodeModules()).Err(err).Msg("could not update node_modules mtime")
	}
}
