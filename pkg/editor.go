package versync

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
)

const defaultFileMode fs.FileMode = 0o644

// Editor applies a single rule to its target file. It holds no state
// between calls.
type Editor struct {
	FS     FS
	Log    zerolog.Logger
	DryRun bool
}

// NewEditor returns an Editor on the real filesystem that logs nowhere.
func NewEditor() *Editor {
	return &Editor{FS: OSFS{}, Log: zerolog.Nop()}
}

// Apply reads rule.Path, replaces every match of rule.Pattern with the
// rendered template and atomically replaces the file. The target is either
// fully rewritten or left as it was.
func (e *Editor) Apply(rule Rule, v Version) EditOutcome {
	fsys := e.FS
	if fsys == nil {
		fsys = OSFS{}
	}
	log := e.Log.With().Str("path", rule.Path).Logger()

	replacement := Render(rule.Template, v)
	out := EditOutcome{Rule: rule, Replacement: replacement, DryRun: e.DryRun}

	data, err := fsys.ReadFile(rule.Path)
	if err != nil {
		out.Status = Failed
		out.Err = classifyReadError(rule.Path, err)
		log.Debug().Err(err).Msg("read failed")
		return out
	}

	text := string(data)
	n := 0
	updated := rule.Pattern.ReplaceAllStringFunc(text, func(string) string {
		n++
		return replacement
	})
	out.Matches = n

	if n == 0 {
		out.Status = NoMatch
		log.Debug().Str("pattern", rule.Source).Msg("pattern did not match")
		return out
	}

	if m := rule.Pattern.FindStringSubmatch(text); m != nil {
		out.Previous = m[1]
		out.Change = changeFrom(v, m[1])
	}

	if e.DryRun {
		out.Status = Applied
		log.Debug().Int("matches", n).Msg("dry run, not writing")
		return out
	}

	if err := replaceFile(fsys, rule.Path, []byte(updated)); err != nil {
		out.Status = Failed
		out.Err = newError(CodeReplaceFailed, rule.Path, err, "could not replace file")
		log.Debug().Err(err).Msg("replace failed")
		return out
	}

	out.Status = Applied
	log.Debug().Int("matches", n).Str("replacement", replacement).Msg("file updated")
	return out
}

func classifyReadError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(CodeFileNotFound, path, err, "file not found")
	case errors.Is(err, fs.ErrPermission):
		return newError(CodePermissionDenied, path, err, "permission denied")
	default:
		return newError(CodeReadFailed, path, err, "could not read file")
	}
}

// replaceFile writes data to a temporary file next to path and renames it
// over path. The temporary file is removed if any step fails.
func replaceFile(fsys FS, path string, data []byte) (err error) {
	mode := defaultFileMode
	if info, statErr := fsys.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := fsys.CreateTemp(dir, "."+base+".*.versync-tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				_ = tmp.Close()
			}
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err = fsys.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s over %s: %w", tmpName, path, err)
	}
	return nil
}
