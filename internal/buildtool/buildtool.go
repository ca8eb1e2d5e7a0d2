// Package buildtool runs external build tools on behalf of the CLI. The
// synchronization core never depends on it.
package buildtool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Result is what a build tool invocation produced.
type Result struct {
	ExitCode int
	Output   []byte
}

// Runner runs a command and reports its exit code and combined output. A
// non-zero exit code is not an error; failing to start the command is.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec. If Stream is set, output is
// copied to it as it is produced in addition to being captured.
type ExecRunner struct {
	Dir    string
	Stream io.Writer
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.Stream != nil {
		w = io.MultiWriter(&buf, r.Stream)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	res := Result{Output: buf.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}

// CommandError is returned when a build tool exits non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   []byte
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
}

// Config holds the settings of a CMake package installation.
type Config struct {
	Source        string `koanf:"source" toml:"source" yaml:"source"`
	Folder        string `koanf:"folder" toml:"folder" yaml:"folder"`
	Generator     string `koanf:"generator" toml:"generator" yaml:"generator"`
	Compiler      string `koanf:"compiler" toml:"compiler" yaml:"compiler"`
	Config        string `koanf:"config" toml:"config,omitempty" yaml:"config,omitempty"`
	InstallPrefix string `koanf:"install_prefix" toml:"install_prefix,omitempty" yaml:"install_prefix,omitempty"`
}

// Defaults for Config.
const (
	DefaultSource    = "."
	DefaultFolder    = "./cmake-pkg-install"
	DefaultGenerator = "Unix Makefiles"
	DefaultCompiler  = "g++"
)

// DefaultConfig returns a Config with the default compiler, generator and
// build folder.
func DefaultConfig() Config {
	return Config{
		Source:    DefaultSource,
		Folder:    DefaultFolder,
		Generator: DefaultGenerator,
		Compiler:  DefaultCompiler,
	}
}

// Installer configures a CMake project and builds its install target.
type Installer struct {
	Runner Runner
	Config Config
	Log    zerolog.Logger
	// CMake is the executable to run; "cmake" when empty.
	CMake string
}

// ConfigureArgs returns the arguments of the configure step. Empty settings
// are left out so CMake applies its own defaults.
func (i *Installer) ConfigureArgs() []string {
	c := i.Config
	src := c.Source
	if src == "" {
		src = DefaultSource
	}
	args := []string{"-H" + src}
	if c.Folder != "" {
		args = append(args, "-B"+c.Folder)
	}
	if c.Generator != "" {
		args = append(args, "-G"+c.Generator)
	}
	if c.Config != "" {
		args = append(args, "-DCMAKE_BUILD_TYPE="+c.Config)
	}
	if c.Compiler != "" {
		args = append(args, "-DCMAKE_CXX_COMPILER="+c.Compiler)
	}
	if c.InstallPrefix != "" {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+c.InstallPrefix)
	}
	return args
}

// BuildArgs returns the arguments of the build-and-install step.
func (i *Installer) BuildArgs() []string {
	folder := i.Config.Folder
	if folder == "" {
		folder = "."
	}
	args := []string{"--build", folder}
	if i.Config.Config != "" {
		args = append(args, "--config", i.Config.Config)
	}
	return append(args, "--target", "install")
}

// Install runs the configure step and then the install build. It stops at
// the first step that fails.
func (i *Installer) Install(ctx context.Context) error {
	for _, args := range [][]string{i.ConfigureArgs(), i.BuildArgs()} {
		if err := i.run(ctx, args); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) run(ctx context.Context, args []string) error {
	name := i.CMake
	if name == "" {
		name = "cmake"
	}
	line := name + " " + strings.Join(args, " ")
	i.Log.Info().Str("command", line).Msg("running build tool")

	res, err := i.Runner.Run(ctx, name, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CommandError{Command: line, ExitCode: res.ExitCode, Output: res.Output}
	}
	return nil
}
