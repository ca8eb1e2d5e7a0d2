package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd, c := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	_ = c.closeLog()
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			printError(stderr, exitErr.Err)
		}
		return exitErr.Code
	}

	// Usage errors from cobra: bad flags, wrong number of arguments.
	printError(stderr, err)
	fmt.Fprintln(stderr)
	_ = rootCmd.Usage()
	return exitFatal
}

func printError(w io.Writer, err error) {
	msg := fmt.Sprintf("Error: %v", err)
	if colorEnabled(w, false) {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
