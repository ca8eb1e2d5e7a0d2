package versync

import (
	"fmt"
	"strings"
)

// Status is the result of applying one rule.
type Status int

const (
	Applied Status = iota
	NoMatch
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case NoMatch:
		return "no-match"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "applied":
		*s = Applied
	case "no-match":
		*s = NoMatch
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Change relates the version a rule found in its file to the target version.
type Change int

const (
	// ChangeUnknown: nothing was found, or the captured text is not a
	// comparable version (a single component such as a MINOR define).
	ChangeUnknown Change = iota
	Upgrade
	Unchanged
	// Downgrade: the file is ahead of the target version.
	Downgrade
)

func (c Change) String() string {
	switch c {
	case Upgrade:
		return "upgrade"
	case Unchanged:
		return "unchanged"
	case Downgrade:
		return "downgrade"
	default:
		return ""
	}
}

func (c Change) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func changeFrom(v Version, found string) Change {
	cmp, ok := v.CompareFound(found)
	switch {
	case !ok:
		return ChangeUnknown
	case cmp < 0:
		return Upgrade
	case cmp == 0:
		return Unchanged
	default:
		return Downgrade
	}
}

// EditOutcome records what happened when a rule was applied to its file.
type EditOutcome struct {
	Rule   Rule
	Status Status
	// Err is set iff Status is Failed. Its code is one of FILE_NOT_FOUND,
	// PERMISSION_DENIED, READ_FAILED or REPLACE_FAILED.
	Err error

	Matches     int    // occurrences replaced
	Replacement string // rendered template
	DryRun      bool   // content was computed but not written

	// Previous is the text of the first capturing group of the first match,
	// the version the file carried before the edit.
	Previous string
	Change   Change
}

// Detail returns the error code of a failed outcome, or "" otherwise.
func (o EditOutcome) Detail() ErrorCode {
	if o.Err == nil {
		return ""
	}
	return CodeOf(o.Err)
}

// Summary counts outcomes by status.
type Summary struct {
	Applied int `json:"applied" yaml:"applied"`
	NoMatch int `json:"no_match" yaml:"no_match"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Total is the number of outcomes counted.
func (s Summary) Total() int {
	return s.Applied + s.NoMatch + s.Failed
}

func (s *Summary) add(o EditOutcome) {
	switch o.Status {
	case Applied:
		s.Applied++
	case NoMatch:
		s.NoMatch++
	case Failed:
		s.Failed++
	}
}

// Result is the aggregate of a synchronization run.
type Result struct {
	Version  Version
	Outcomes []EditOutcome
	Summary  Summary
}

// OK reports whether no rule failed. NoMatch outcomes do not count as failures.
func (r *Result) OK() bool {
	return r.Summary.Failed == 0
}

// Ahead returns the applied outcomes whose file carried a version newer than
// the target.
func (r *Result) Ahead() []EditOutcome {
	var out []EditOutcome
	for _, o := range r.Outcomes {
		if o.Status == Applied && o.Change == Downgrade {
			out = append(out, o)
		}
	}
	return out
}

// Clean reports whether every rule was applied.
func (r *Result) Clean() bool {
	return r.Summary.Failed == 0 && r.Summary.NoMatch == 0
}
