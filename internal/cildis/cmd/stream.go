package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cildis/internal/cursor"
	"cildis/internal/disasm"
)

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <file>",
		Short: "Decode bytes linearly, one instruction after another",
		Long: `Decode a byte range as a straight sequence of instructions without following
branches. The input is a file, "-" for stdin, or hex text with --hex.`,
		Example: `
cildis stream body.bin --offset 12 --rva 0x205C
cildis stream --hex "02 2C 01 2A 14 7A"
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
			length, _ := cmd.Flags().GetInt("length")

			end, err := window(data, offset, length)
			if err != nil {
				return err
			}
			code := data[offset:end]
			instrs, err := disasm.DecodeStream(cursor.New(code), rva)
			if err != nil {
				return fmt.Errorf("decode failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if cfg.Format == formatJSON {
				out := make([]instructionJSON, len(instrs))
				for i, in := range instrs {
					out[i] = toInstructionJSON(in, code)
				}
				return writeJSON(w, out)
			}
			for _, in := range instrs {
				fmt.Fprintln(w, in.String())
			}
			return nil
		},
	}

	cmd.Flags().Bool("hex", false, "Treat the argument as hex bytes instead of a path")
	cmd.Flags().Int("offset", 0, "Start offset into the input")
	cmd.Flags().Uint64("rva", 0, "Virtual address of the first decoded byte")
	cmd.Flags().Int("length", 0, "Bytes to decode (0 for the rest of the input)")
	cmd.Flags().BoolP(formatJSON, "j", false, "Output results as JSON")
	return cmd
}
