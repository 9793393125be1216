package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/routegen-dev/routegen/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┬ ┬┬┐┌─┐┌─┐┌─┐┌┐┌
  ├┬┘│ ││ │ │ ├┤ │ ┬├┤ │││
  ┴└─└─┘└─┘ ┴ └─┘└─┘└─┘┘└┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "routegen",
		Short: "File-based route table compiler for Go",
		Long: `Routegen compiles a directory of file-based routes into a
generated Go dispatch table.

It scans a pages directory for index.go, _middleware.go, and
_rewrite.go files, builds a deterministic routing table, and emits
it as Go source. Features include:

  • Dynamic [param] segments and (group) directories
  • Middleware and rewrite chains resolved at compile time
  • Deterministic output suitable for version control
  • Hot-reload development server with a route inspector
  • S3 deployment of generated tables`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		genCmd(),
		devCmd(),
		deployCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the routegen ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
