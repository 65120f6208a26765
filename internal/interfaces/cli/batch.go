package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// batchFile is the on-disk input shape for batch enhancement:
//
//	{
//	  "tuples":   [{"subject": "...", "verb": "...", "object": "..."}],
//	  "contexts": ["..."]
//	}
type batchFile struct {
	Tuples   []svo.Tuple `json:"tuples"`
	Contexts []string    `json:"contexts"`
}

// newBatchCommand enhances a file of tuples in one call.
func newBatchCommand(opts *RootOptions) *cobra.Command {
	var (
		inputPath  string
		exportPath string
		asJob      bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Enhance a batch of SVO tuples from a JSON file",
		Example: `  phytotrait batch --input tuples.json
  phytotrait batch --input tuples.json --job --export results.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readBatchFile(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			c, err := opts.newClient()
			if err != nil {
				return err
			}

			if asJob {
				out, err := c.EnhanceJob(cmd.Context(), input.Tuples, input.Contexts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			out, err := c.EnhanceBatch(cmd.Context(), input.Tuples, input.Contexts)
			if err != nil {
				return err
			}

			if exportPath != "" {
				doc, err := c.Export(cmd.Context(), out.Results, "json")
				if err != nil {
					return err
				}
				if err := os.WriteFile(exportPath, doc, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d results to %s\n", len(out.Results), exportPath)
				return nil
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file of tuples (defaults to stdin)")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the exported result document to this file")
	cmd.Flags().BoolVar(&asJob, "job", false, "isolate per-tuple failures instead of aborting the batch")
	return cmd
}

func readBatchFile(path string, stdin io.Reader) (*batchFile, error) {
	var reader io.Reader = stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var input batchFile
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if len(input.Tuples) == 0 {
		return nil, fmt.Errorf("input contains no tuples")
	}
	return &input, nil
}
