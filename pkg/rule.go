package versync

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe finds {identifier} placeholders in a replacement template.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var knownPlaceholders = map[string]bool{
	"major": true,
	"minor": true,
	"patch": true,
}

// RuleDef is the raw configuration form of a rule: a target path, a regular
// expression and a replacement template.
type RuleDef struct {
	Path     string `koanf:"path" yaml:"path" toml:"path"`
	Pattern  string `koanf:"pattern" yaml:"pattern" toml:"pattern"`
	Template string `koanf:"template" yaml:"template" toml:"template"`
}

// Rule is a validated RuleDef. The pattern is compiled in multi-line mode so
// that ^ and $ match at line boundaries.
type Rule struct {
	Path     string
	Pattern  *regexp.Regexp
	Template string

	// Source is the pattern as written in the configuration.
	Source string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s: %s", r.Path, r.Source)
}

// CompileRule validates a single definition.
func CompileRule(def RuleDef) (Rule, error) {
	if strings.TrimSpace(def.Path) == "" {
		return Rule{}, errors.New("path is empty")
	}
	if def.Pattern == "" {
		return Rule{}, errors.New("pattern is empty")
	}
	re, err := regexp.Compile("(?m)" + def.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("pattern %q does not compile: %w", def.Pattern, err)
	}
	if re.NumSubexp() < 1 {
		return Rule{}, fmt.Errorf("pattern %q has no capturing group around the version", def.Pattern)
	}
	if err := validateTemplate(def.Template); err != nil {
		return Rule{}, err
	}
	return Rule{
		Path:     def.Path,
		Pattern:  re,
		Template: def.Template,
		Source:   def.Pattern,
	}, nil
}

func validateTemplate(tmpl string) error {
	matches := placeholderRe.FindAllStringSubmatch(tmpl, -1)
	if len(matches) == 0 {
		return fmt.Errorf("template %q references none of {major}, {minor}, {patch}", tmpl)
	}
	for _, m := range matches {
		if !knownPlaceholders[m[1]] {
			return fmt.Errorf("template %q has unknown placeholder {%s}", tmpl, m[1])
		}
	}
	return nil
}

// RuleTable is an ordered, read-only list of validated rules.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable validates every definition before returning. If any
// definition is malformed, no table is returned and the error (code
// INVALID_RULE_DEFINITION) lists every offending entry.
func NewRuleTable(defs []RuleDef) (*RuleTable, error) {
	rules := make([]Rule, 0, len(defs))
	var problems []error
	for i, def := range defs {
		r, err := CompileRule(def)
		if err != nil {
			problems = append(problems, fmt.Errorf("rule %d (%s): %w", i+1, def.Path, err))
			continue
		}
		rules = append(rules, r)
	}
	if len(problems) > 0 {
		return nil, newError(CodeInvalidRuleDefinition, "", errors.Join(problems...),
			"%d of %d rules are invalid", len(problems), len(defs))
	}
	return &RuleTable{rules: rules}, nil
}

// MustRuleTable is like NewRuleTable but panics on error.
func MustRuleTable(defs ...RuleDef) *RuleTable {
	t, err := NewRuleTable(defs)
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns a copy of the rules in table order.
func (t *RuleTable) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}
