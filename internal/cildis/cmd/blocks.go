package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cildis/internal/analysis"
	"cildis/internal/detectors"
	"cildis/internal/disasm"
)

func newBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks <file>",
		Short: "Follow control flow from an offset and print basic blocks",
		Long: `Decode every block reachable from the start offset, following branch targets and
fallthrough edges. Targets outside the input are reported but not decoded.`,
		Example: `
cildis blocks body.bin --offset 1 --rva 0x2051 --tree
cildis blocks --hex "00 2C 02 2A 2A" --report
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			offset, _ := cmd.Flags().GetInt("offset")
			rva, _ := cmd.Flags().GetUint64("rva")

			end, err := window(data, offset, cfg.MaxSize)
			if err != nil {
				return err
			}
			blocks, err := disasm.DecodeBlocks(data, offset, rva, cfg.MaxSize)
			if err != nil {
				return fmt.Errorf("decode failed: %w", err)
			}

			name := fmt.Sprintf("fragment_%08X", rva)
			subject := analysis.Subject{
				Name:   name,
				Blocks: blocks,
				Start:  rva,
				End:    rva + uint64(end-offset),
			}
			findings := detectors.Default().Detect(subject, nil)

			w := cmd.OutOrStdout()
			if cfg.Format == formatJSON {
				return writeJSON(w, methodJSON{
					Name:     name,
					RVA:      hexAddr(rva),
					CodeSize: end - offset,
					Blocks:   toBlocksJSON(blocks, data),
					Findings: toFindingsJSON(findings),
				})
			}
			return renderBlocks(w, cfg.Format, name, blocks, findings)
		},
	}

	cmd.Flags().Bool("hex", false, "Treat the argument as hex bytes instead of a path")
	cmd.Flags().Int("offset", 0, "Start offset into the input")
	cmd.Flags().Uint64("rva", 0, "Virtual address of the start offset")
	cmd.Flags().Int("max-size", 0, "Bytes past the start offset to consider (0 for no limit)")
	addFormatFlags(cmd)
	return cmd
}
