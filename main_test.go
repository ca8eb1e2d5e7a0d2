package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/versync/internal/buildtool"
	"github.com/bcomnes/versync/internal/report"
)

const verRules = `
[[rule]]
path = "A.txt"
pattern = '^ver=(\d+\.\d+\.\d+)$'
template = "ver={major}.{minor}.{patch}"

[[rule]]
path = "B.txt"
pattern = '^ver=(\d+\.\d+\.\d+)$'
template = "ver={major}.{minor}.{patch}"
`

// setup isolates the log file and returns a directory holding A.txt,
// B.txt and a config file with rules for both.
func setup(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.txt"), []byte("ver=1.2.3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.txt"), []byte("ver=1.2.3\n"), 0644))
	cfgPath = filepath.Join(dir, ".versync.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(verRules), 0644))
	return dir, cfgPath
}

func runInProcess(args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSyncUpdatesFiles(t *testing.T) {
	dir, cfg := setup(t)

	stdout, stderr, code := runInProcess("--config", cfg, "sync", "1.3.0")
	require.Equal(t, exitOK, code, "stderr: %s", stderr)

	assert.Equal(t, "ver=1.3.0\n", readString(t, filepath.Join(dir, "A.txt")))
	assert.Equal(t, "ver=1.3.0\n", readString(t, filepath.Join(dir, "B.txt")))
	assert.Contains(t, stdout, "Synchronizing files to version 1.3.0")
	assert.Contains(t, stdout, "2 applied, 0 no-match, 0 failed")
}

func TestSyncDryRun(t *testing.T) {
	dir, cfg := setup(t)

	stdout, _, code := runInProcess("--config", cfg, "sync", "--dry-run", "1.3.0")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "dry run")
	assert.Equal(t, "ver=1.2.3\n", readString(t, filepath.Join(dir, "A.txt")))
}

func TestSyncPartialFailureExitsOne(t *testing.T) {
	dir, cfg := setup(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "A.txt")))

	stdout, _, code := runInProcess("--config", cfg, "sync", "1.3.0")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "FILE_NOT_FOUND")
	assert.Equal(t, "ver=1.3.0\n", readString(t, filepath.Join(dir, "B.txt")), "independent rule not applied")
}

func TestSyncNoMatchExitsZero(t *testing.T) {
	dir, cfg := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.txt"), []byte("version=1.2.3\n"), 0644))

	stdout, _, code := runInProcess("--config", cfg, "sync", "1.3.0")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "1 applied, 1 no-match, 0 failed")
}

func TestSyncInvalidVersionIsFatal(t *testing.T) {
	dir, cfg := setup(t)

	for _, bad := range []string{"1.3", "v1.3.0", "01.3.0", "1.3.0-rc1"} {
		_, stderr, code := runInProcess("--config", cfg, "sync", bad)
		assert.Equal(t, exitFatal, code, bad)
		assert.Contains(t, stderr, "INVALID_VERSION_FORMAT", bad)
	}
	assert.Equal(t, "ver=1.2.3\n", readString(t, filepath.Join(dir, "A.txt")))
}

func TestSyncInvalidRuleIsFatal(t *testing.T) {
	dir, cfg := setup(t)
	bad := verRules + `
[[rule]]
path = "C.txt"
pattern = 'ver=\d+'
template = "ver={major}"
`
	require.NoError(t, os.WriteFile(cfg, []byte(bad), 0644))

	_, stderr, code := runInProcess("--config", cfg, "sync", "1.3.0")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "INVALID_RULE_DEFINITION")
	assert.Contains(t, stderr, "no capturing group")
	assert.Equal(t, "ver=1.2.3\n", readString(t, filepath.Join(dir, "A.txt")))
	assert.Equal(t, "ver=1.2.3\n", readString(t, filepath.Join(dir, "B.txt")))
}

func TestSyncMissingConfigIsFatal(t *testing.T) {
	setup(t)
	_, stderr, code := runInProcess("--config", filepath.Join(t.TempDir(), "none.toml"), "sync", "1.3.0")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "none.toml")
}

func TestSyncJSONOutput(t *testing.T) {
	_, cfg := setup(t)

	stdout, _, code := runInProcess("--config", cfg, "-o", "json", "sync", "2.0.0")
	require.Equal(t, exitOK, code)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, "2.0.0", rep.Version)
	assert.Equal(t, 2, rep.Summary.Applied)
}

func TestSyncUnknownOutputIsFatal(t *testing.T) {
	_, cfg := setup(t)
	_, stderr, code := runInProcess("--config", cfg, "-o", "xml", "sync", "2.0.0")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "unknown output format")
}

func TestCheckDetectsDrift(t *testing.T) {
	dir, cfg := setup(t)

	_, _, code := runInProcess("--config", cfg, "check", "1.3.0")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ver=1.2.3\n", readString(t, filepath.Join(dir, "A.txt")), "check must not write")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.txt"), []byte("release=1.2.3\n"), 0644))
	stdout, _, code := runInProcess("--config", cfg, "check", "1.3.0")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "no-match")
}

func TestCheckFlagsFilesAheadOfTarget(t *testing.T) {
	dir, cfg := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.txt"), []byte("ver=2.0.0\n"), 0644))

	stdout, _, code := runInProcess("--config", cfg, "check", "1.3.0")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "ahead of target")
	assert.Equal(t, "ver=2.0.0\n", readString(t, filepath.Join(dir, "B.txt")))

	// sync still writes the requested version.
	_, _, code = runInProcess("--config", cfg, "sync", "1.3.0")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ver=1.3.0\n", readString(t, filepath.Join(dir, "B.txt")))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestSyncReportFailureAfterWritesExitsOne(t *testing.T) {
	dir, cfg := setup(t)

	var stderr bytes.Buffer
	code := run([]string{"--config", cfg, "sync", "1.3.0"}, brokenWriter{}, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "writing report")
	assert.Equal(t, "ver=1.3.0\n", readString(t, filepath.Join(dir, "A.txt")))
}

func TestInitPrintsStarter(t *testing.T) {
	setup(t)
	stdout, _, code := runInProcess("init")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "[[rule]]")
	assert.Contains(t, stdout, "{major}")

	stdout, _, code = runInProcess("init", "--format", "yaml")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "rule:")
	assert.Contains(t, stdout, "build:")
}

func TestInitWritesOnce(t *testing.T) {
	setup(t)
	target := filepath.Join(t.TempDir(), "versync.toml")

	stdout, _, code := runInProcess("--config", target, "init", "--write")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Wrote "+target)
	assert.Contains(t, readString(t, target), "[[rule]]")

	_, stderr, code := runInProcess("--config", target, "init", "--write")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "already exists")

	_, _, code = runInProcess("--config", target, "init", "--write", "--force")
	assert.Equal(t, exitOK, code)
}

func TestRulesPrintsResolvedTable(t *testing.T) {
	dir, cfg := setup(t)

	stdout, _, code := runInProcess("--config", cfg, "rules")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "# 2 rules loaded from "+cfg)
	assert.Contains(t, stdout, filepath.Join(dir, "A.txt"))

	stdout, _, code = runInProcess("--config", cfg, "rules", "--format", "yaml")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "template:")
	assert.Contains(t, stdout, "ver={major}.{minor}.{patch}")
}

type recordingRunner struct {
	lines []string
	exit  int
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (buildtool.Result, error) {
	r.lines = append(r.lines, name+" "+strings.Join(args, " "))
	return buildtool.Result{ExitCode: r.exit}, nil
}

func TestInstallUsesConfigAndFlags(t *testing.T) {
	_, cfg := setup(t)
	f, err := os.OpenFile(cfg, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\n[build]\ncompiler = \"clang++\"\nfolder = \"out\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rec := &recordingRunner{}
	orig := newRunner
	newRunner = func(_ io.Writer) buildtool.Runner { return rec }
	t.Cleanup(func() { newRunner = orig })

	stdout, _, code := runInProcess("--config", cfg, "install", "--build-type", "Release")
	require.Equal(t, exitOK, code)
	require.Len(t, rec.lines, 2)
	assert.Equal(t, "cmake -H. -Bout -GUnix Makefiles -DCMAKE_BUILD_TYPE=Release -DCMAKE_CXX_COMPILER=clang++", rec.lines[0])
	assert.Equal(t, "cmake --build out --config Release --target install", rec.lines[1])
	assert.Contains(t, stdout, "Installing package:")

	rec.lines = nil
	rec.exit = 1
	stdout, _, code = runInProcess("--config", cfg, "install", "-q")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Len(t, rec.lines, 1)
}

func TestVersionCommand(t *testing.T) {
	setup(t)
	stdout, _, code := runInProcess("version")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "versync CLI version "+Version+"\n", stdout)
}
