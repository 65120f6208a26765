package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newGlossaryCommand lists the server's loaded botanical vocabulary.
func newGlossaryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "List the loaded botanical glossary terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			terms, err := c.GlossaryTerms(cmd.Context())
			if err != nil {
				return err
			}

			if opts.OutputFormat == "table" {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "NAME\tCATEGORY\tAI\tUNIT\tSYNONYMS")
				for _, term := range terms {
					ai := ""
					if term.AIDerivable {
						ai = "yes"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						term.Name, term.Category, ai, term.MeasurementUnit,
						strings.Join(term.Synonyms, ","))
				}
				tw.Flush()
				return nil
			}
			return printJSON(cmd.OutOrStdout(), terms)
		},
	}
	return cmd
}
