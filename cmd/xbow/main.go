package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/xbow/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ─┐ ┬┌┐ ┌─┐┬ ┬
  ┌┴┬┘├┴┐│ ││││
  ┴ └─└─┘└─┘└┴┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xbow",
		Short: "Fine-grained change tracking for nested state",
		Long: `xbow tracks changes to nested Go values path by path.

Reads and writes go through tracked nodes. Each write notifies the
written path and every ancestor; removing an entry marks the handles
below it stale. The serve command exposes a TodoMVC store over HTTP
with a websocket change feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		demoCmd(),
		initCmd(),
		versionCmd(),
	)
	return root
}

// success prints a checkmarked line to w.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an indented line to w.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
