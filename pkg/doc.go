// Package versync propagates a single semantic version into many text files.
//
// Each target file is named by a rule: a path, a regular expression with at
// least one capturing group around the version it matches, and a replacement
// template using the {major}, {minor} and {patch} placeholders. Patterns are
// applied in multi-line mode to the whole file and every match is replaced.
//
// It provides:
//   - Parsing strict "<major>.<minor>.<patch>" versions (no "v" prefix, no
//     pre-release suffix, no leading zeros).
//   - Validating a rule table up front, so a malformed rule aborts the run
//     before any file is touched.
//   - Rewriting each target atomically: new content is written to a temporary
//     file in the target's directory and renamed over it, so a file is either
//     fully updated or left unchanged.
//   - Reporting a per-rule outcome (applied, no-match, failed) and a summary.
//     A rule that fails does not stop the others.
//
// Usage Example:
//
//	rules := []versync.RuleDef{{
//	    Path:     "CMakeLists.txt",
//	    Pattern:  `^set\( mylib_version "([0-9]+\.[0-9]+\.[0-9]+)" \)$`,
//	    Template: `set( mylib_version "{major}.{minor}.{patch}" )`,
//	}}
//	res, err := versync.Run(ctx, "1.3.0", rules)
//	if err != nil {
//	    log.Fatalf("sync aborted: %v", err)
//	}
//	for _, o := range res.Outcomes {
//	    fmt.Println(o.Rule.Path, o.Status)
//	}
//
// The package never writes to the console. Pass WithLogger to observe a run.
package versync
