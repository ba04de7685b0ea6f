package tools

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
)

// ExitCodeMissing is the normalized exit code reported when a binary could
// not be found on the search path.
const ExitCodeMissing = 127

// Command is one subprocess invocation. Dir and Env are optional; a nil Env
// inherits the parent process environment.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner abstracts subprocess execution for packaging steps.
type CommandRunner interface {
	Run(cmd Command) ([]byte, []byte, int32, error)
	RunStreaming(cmd Command, stdout, stderr io.Writer) error
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// tools command-runner implementation backed by os/exec.
func (r ExecRunner) Run(spec Command) ([]byte, []byte, int32, error) {
	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode(err), err
}

// RunStreaming executes one command with stdout/stderr wired to the given
// writers, for long operations whose output the operator should see live.
func (r ExecRunner) RunStreaming(spec Command, stdout, stderr io.Writer) error {
	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}
	return cmd.Run()
}

func exitCode(err error) int32 {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ExitCodeMissing
	}
	return 1
}
