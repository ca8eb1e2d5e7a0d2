package versync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// versionRe accepts exactly three dot-separated decimal components, each
// either "0" or a number without leading zeros.
var versionRe = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)$`)

// Version is an immutable major.minor.patch triple.
type Version struct {
	major, minor, patch int
}

// ParseVersion parses text of the form "<major>.<minor>.<patch>". Surrounding
// whitespace is ignored; prefixes such as "v", pre-release and build suffixes,
// partial versions and components with leading zeros are rejected.
func ParseVersion(text string) (Version, error) {
	s := strings.TrimSpace(text)
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, newError(CodeInvalidVersionFormat, "", nil,
			"%q is not a major.minor.patch version", text)
	}

	var parts [3]int
	for i, c := range m[1:] {
		n, err := strconv.Atoi(c)
		if err != nil {
			return Version{}, newError(CodeInvalidVersionFormat, "", err,
				"version component %q out of range", c)
		}
		parts[i] = n
	}
	return Version{major: parts[0], minor: parts[1], patch: parts[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for
// tests and package-level variables.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Major returns the major component.
func (v Version) Major() int { return v.major }

// Minor returns the minor component.
func (v Version) Minor() int { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() int { return v.patch }

// String returns the canonical "<major>.<minor>.<patch>" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// canonical returns v in the "vMAJOR.MINOR.PATCH" form used by
// golang.org/x/mod/semver.
func (v Version) canonical() string {
	return "v" + v.String()
}

// Compare returns -1, 0 or +1 as v is lower than, equal to or higher than w.
func (v Version) Compare(w Version) int {
	return semver.Compare(v.canonical(), w.canonical())
}

// CompareFound compares a version found in a file with v, at the precision
// of the found text: "0.33" is compared with the major.minor of v. It
// returns -1, 0 or +1 as found is lower than, equal to or higher than v.
// ok is false unless found is a two- or three-component version without
// pre-release or build suffix.
func (v Version) CompareFound(found string) (cmp int, ok bool) {
	f := "v" + strings.TrimSpace(found)
	if !semver.IsValid(f) || semver.Prerelease(f) != "" || semver.Build(f) != "" {
		return 0, false
	}
	target := v.canonical()
	switch strings.Count(f, ".") {
	case 1:
		target = semver.MajorMinor(target)
	case 2:
	default:
		return 0, false
	}
	return semver.Compare(f, target), true
}

// Render substitutes {major}, {minor} and {patch} in template with the
// decimal components of v. Any other text, including other braces, is kept
// as is.
func (v Version) Render(template string) string {
	return strings.NewReplacer(
		"{major}", strconv.Itoa(v.major),
		"{minor}", strconv.Itoa(v.minor),
		"{patch}", strconv.Itoa(v.patch),
	).Replace(template)
}

// Render substitutes the components of v into template. It is the form the
// editor uses to build each rule's replacement.
func Render(template string, v Version) string {
	return v.Render(template)
}
