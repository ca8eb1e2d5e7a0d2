// Package main implements the versync CLI tool.
//
// The versync tool writes a single major.minor.patch version into every file
// that carries a copy of it: build scripts, headers, package manifests and
// documentation. Which files to edit, and where, is described by a rule
// table. Each rule names a file, a regular expression whose capturing group
// surrounds the version marker, and a replacement template using the
// {major}, {minor} and {patch} placeholders. Every file is rewritten
// atomically through a temporary file and a rename, so it is either fully
// updated or left untouched.
//
// The version and the whole rule table are validated before any file is
// opened. The version each rule finds in its file is reported next to the
// new one, and files already ahead of it are flagged. A rule that cannot be
// applied (missing file, permission denied, failed write) is reported as
// failed and does not stop the others. A rule whose pattern no longer
// matches its file is reported as no-match.
//
// Command Usage:
//
//	versync [flags] <command> [args]
//
// Commands:
//
//	sync <version>:  Write the version into every file of the rule table.
//	check <version>: Apply every rule without writing and fail unless all match
//	                 and no file carries a newer version.
//	init:            Print, or write with --write, a starter rule table.
//	rules:           Validate and print the effective configuration.
//	install:         Configure the project with CMake and build its install target.
//	version:         Print the version of the versync CLI.
//
// Flags:
//
//	-c, --config:   Rule table file. Defaults to the first of .versync.toml,
//	                versync.toml, .versync.yaml and versync.yaml found in the
//	                current directory.
//	-o, --output:   Report format: text, yaml or json. (Defaults to text)
//	-v, --verbose:  Increase log verbosity. May be repeated.
//	--no-color:     Disable coloured output. NO_COLOR is also honoured.
//	-n, --dry-run:  (sync) Report what would change without writing any file.
//
// Exit status is 0 when every rule was applied or did not match, 1 when a
// rule failed or check found drift, and 2 when the version, the rule table
// or the configuration is invalid, in which case no file was touched.
//
// Configuration:
//
//	[[rule]]
//	path = "CMakeLists.txt"
//	pattern = 'project\([ \t]*mylib[ \t]+VERSION[ \t]+(\d+\.\d+\.\d+)'
//	template = "project(mylib VERSION {major}.{minor}.{patch}"
//
//	[[rule]]
//	path = "include/mylib/mylib.hpp"
//	pattern = '^#define[ \t]+mylib_MAJOR[ \t]+(\d+)'
//	template = "#define mylib_MAJOR  {major}"
//
//	[build]
//	compiler = "clang++"
//
// Relative rule paths are resolved against the directory of the
// configuration file. Build settings may also be given as VERSYNC_BUILD_*
// environment variables or install flags.
//
// Examples:
//
//	# Write 0.34.0 into every file of ./.versync.toml
//	versync sync 0.34.0
//
//	# Preview the edits with per-rule detail
//	versync sync --dry-run -v 0.34.0
//
//	# Fail CI when a rule no longer matches its file
//	versync check 0.34.0
//
//	# Use a YAML rule table and emit a JSON report
//	versync -c tools/versions.yaml -o json sync 1.0.0
//
//	# Install the package with a release build
//	versync install --build-type Release --install-prefix /opt/mylib
//
// For the library API see the "pkg" package or visit
// [PkgGoDev](https://pkg.go.dev/github.com/bcomnes/versync/pkg).
package main
