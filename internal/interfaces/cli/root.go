// Package cli implements the phytotrait command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags shared by every subcommand.
type RootOptions struct {
	ServerAddr   string
	OutputFormat string
	Timeout      time.Duration
	Verbose      bool
}

// NewRootCommand creates the root cobra command with all global flags
// and subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phytotrait",
		Short: "Botanical trait inference over SVO tuples",
		Long: `phytotrait enhances Subject-Verb-Object tuples with glossary-matched,
confidence-scored botanical trait inferences served by a PhytoTrait API server.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "API server base URL")
	flags.StringVarP(&opts.OutputFormat, "output", "o", "json", "output format: json | table")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newEnhanceCommand(opts),
		newBatchCommand(opts),
		newSummaryCommand(opts),
		newGlossaryCommand(opts),
	)

	return cmd
}

// newClient builds the SDK client from the global flags.
func (o *RootOptions) newClient() (*client.Client, error) {
	return client.NewClient(o.ServerAddr, client.WithTimeout(o.Timeout))
}

// printJSON renders v as indented JSON on w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable starts a tab-aligned table on w.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
