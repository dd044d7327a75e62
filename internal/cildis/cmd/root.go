package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"cildis/internal/cildis/log"
	"cildis/internal/ui/colorize"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cildis",
		Short: "CIL bytecode disassembler",
		Long: `cildis decodes CIL (ECMA-335) method bodies into instructions and basic blocks.
It works on raw byte dumps and on method bodies inside managed PE images.`,
		Example: `
# Linear decode of a raw dump
cildis stream body.bin --rva 0x2050

# Control-flow blocks of a fragment, as a tree
cildis blocks body.bin --tree

# Decode several methods of an assembly against one shared visited map
cildis method app.dll --rva 0x2050 --rva 0x2078 --report
  `,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			log.Setup(cfg.Debug)

			noTUI, _ := cmd.Flags().GetBool("no-tui")
			if cfg.NoColor || noTUI || !isTerminal(cmd.OutOrStdout()) {
				colorize.Disable()
			}
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	root.PersistentFlags().BoolP("debug", "d", false, "Debug")
	root.PersistentFlags().String("config", "", "Path to a JSON config file")
	root.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	root.PersistentFlags().BoolP("no-tui", "n", false, "Never start the interactive browser")

	root.AddCommand(
		newStreamCmd(),
		newBlocksCmd(),
		newMethodCmd(),
		newBrowseCmd(),
		newSchemaCmd(),
	)
	return root
}

func Execute() {
	rootCmd := NewRootCmd()

	// fang renders help and errors as markdown, which garbles piped output
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" {
			noTUI = true
			break
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// readInput returns the bytes named by arg: a file path, "-" for stdin, or hex text when
// --hex is set.
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if asHex, _ := cmd.Flags().GetBool("hex"); asHex {
		clean := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\n', '\r', ',':
				return -1
			}
			return r
		}, arg)
		clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
		data, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return data, nil
	}

	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", arg)
		}
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	return data, nil
}

// window validates offset and returns the end of the region that starts there.
func window(data []byte, offset, length int) (int, error) {
	if offset < 0 || offset >= len(data) {
		return 0, fmt.Errorf("offset %d outside input of %d bytes", offset, len(data))
	}
	end := len(data)
	if length > 0 && length < end-offset {
		end = offset + length
	}
	return end, nil
}
