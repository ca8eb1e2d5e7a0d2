// Package report renders the result of a synchronization run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	versync "github.com/bcomnes/versync/pkg"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	YAML Format = "yaml"
	JSON Format = "json"
)

// Formats lists the accepted output formats.
var Formats = []string{string(Text), string(YAML), string(JSON)}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, YAML, JSON:
		return f, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want %s)", s, strings.Join(Formats, ", "))
	}
}

// Options controls rendering.
type Options struct {
	Format Format
	// Color enables ANSI styling in text output.
	Color bool
	// Verbose adds the replacement text of each rule and the full error of
	// failed ones.
	Verbose bool
	// BaseDir, when set, shortens paths below it in text output.
	BaseDir string
}

// Entry is the serializable form of one outcome.
type Entry struct {
	Path        string `json:"path" yaml:"path"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Status      string `json:"status" yaml:"status"`
	Matches     int    `json:"matches" yaml:"matches"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Previous    string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Change      string `json:"change,omitempty" yaml:"change,omitempty"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the serializable form of a run.
type Report struct {
	Version  string          `json:"version" yaml:"version"`
	DryRun   bool            `json:"dry_run" yaml:"dry_run"`
	Outcomes []Entry         `json:"outcomes" yaml:"outcomes"`
	Summary  versync.Summary `json:"summary" yaml:"summary"`
	// Ahead counts files that carried a version newer than Version.
	Ahead int `json:"ahead" yaml:"ahead"`
}

// New converts a run result into a Report.
func New(res *versync.Result, dryRun bool) Report {
	r := Report{
		Version:  res.Version.String(),
		DryRun:   dryRun,
		Outcomes: make([]Entry, 0, len(res.Outcomes)),
		Summary:  res.Summary,
		Ahead:    len(res.Ahead()),
	}
	for _, o := range res.Outcomes {
		e := Entry{
			Path:        o.Rule.Path,
			Pattern:     o.Rule.Source,
			Status:      o.Status.String(),
			Matches:     o.Matches,
			Replacement: o.Replacement,
			Previous:    o.Previous,
			Change:      o.Change.String(),
			Detail:      string(o.Detail()),
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		r.Outcomes = append(r.Outcomes, e)
	}
	return r
}

// Write renders res to w.
func Write(w io.Writer, res *versync.Result, dryRun bool, opts Options) error {
	rep := New(res, dryRun)
	switch opts.Format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case Text, "":
		return writeText(w, rep, opts)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

var (
	appliedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noMatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true)
)

func styled(on bool, s lipgloss.Style, text string) string {
	if !on {
		return text
	}
	return s.Render(text)
}

func statusCell(status string, color bool) string {
	switch status {
	case versync.Applied.String():
		return styled(color, appliedStyle, status)
	case versync.NoMatch.String():
		return styled(color, noMatchStyle, status)
	case versync.Failed.String():
		return styled(color, failedStyle, status)
	}
	return status
}

func detailCell(e Entry, color bool) string {
	switch {
	case e.Status == versync.NoMatch.String():
		return "pattern not found"
	case e.Detail != "":
		return e.Detail
	case e.Change == versync.Unchanged.String():
		return "already at target"
	case e.Change == versync.Downgrade.String():
		return styled(color, noMatchStyle, "ahead of target")
	}
	return ""
}

func displayPath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func writeText(w io.Writer, rep Report, opts Options) error {
	heading := fmt.Sprintf("Synchronizing files to version %s", rep.Version)
	if rep.DryRun {
		heading += " (dry run, no files modified)"
	}
	if _, err := fmt.Fprintln(w, styled(opts.Color, headingStyle, heading)); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	header := table.Row{"#", "File", "Status", "Matches", "Previous", "Detail"}
	if opts.Verbose {
		header = append(header, "Replacement")
	}
	t.AppendHeader(header)
	for i, e := range rep.Outcomes {
		row := table.Row{i + 1, displayPath(e.Path, opts.BaseDir), statusCell(e.Status, opts.Color), e.Matches, e.Previous, detailCell(e, opts.Color)}
		if opts.Verbose {
			row = append(row, strings.TrimRight(e.Replacement, "\n"))
		}
		t.AppendRow(row)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	if opts.Verbose {
		for _, e := range rep.Outcomes {
			if e.Error != "" {
				if _, err := fmt.Fprintf(w, "  %s: %s\n", displayPath(e.Path, opts.BaseDir), e.Error); err != nil {
					return err
				}
			}
		}
	}

	if rep.Ahead > 0 {
		msg := fmt.Sprintf("%d file(s) carried a version newer than %s", rep.Ahead, rep.Version)
		if _, err := fmt.Fprintln(w, styled(opts.Color, noMatchStyle, msg)); err != nil {
			return err
		}
	}

	s := rep.Summary
	_, err := fmt.Fprintf(w, "%s applied, %s no-match, %s failed\n",
		styled(opts.Color, appliedStyle, fmt.Sprint(s.Applied)),
		styled(opts.Color, noMatchStyle, fmt.Sprint(s.NoMatch)),
		styled(opts.Color, failedStyle, fmt.Sprint(s.Failed)))
	return err
}
