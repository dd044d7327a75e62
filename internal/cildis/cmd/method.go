package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"cildis/internal/analysis"
	"cildis/internal/assembly"
	"cildis/internal/detectors"
	"cildis/internal/disasm"
	"cildis/internal/listing"
	"cildis/internal/logging"
	"cildis/internal/peimg"
)

// decodedMethod is one method after decoding, with everything the outputs need.
type decodedMethod struct {
	Name     string
	RVA      uint32
	Start    uint64 // code RVA
	CodeSize int
	Blocks   []disasm.BasicBlock
	Findings []analysis.Finding
	Coverage analysis.CoverageReport
	Err      error
}

// Shared reports whether every block was already expanded by another method.
func (d decodedMethod) Shared() bool {
	if d.Err != nil {
		return false
	}
	for _, b := range d.Blocks {
		if len(b.Instructions) > 0 {
			return false
		}
	}
	return true
}

func summarize(a *assembly.Assembly, r assembly.Result) decodedMethod {
	m := r.Method
	d := decodedMethod{Name: m.Name(), Err: r.Err}
	rva, ok := m.RVA()
	if !ok {
		return d
	}
	d.RVA = rva
	d.Start = uint64(m.CodeRVA())
	if body := m.Body(); body != nil {
		d.CodeSize = body.CodeSize
	}
	if off, err := a.Image().RVAToOffset(m.CodeRVA()); err == nil {
		d.Coverage = analysis.Coverage(a.Visited(), off, off+d.CodeSize)
	}
	if r.Err != nil {
		return d
	}

	d.Blocks, _ = m.Blocks()
	d.Findings = detectors.Default().Detect(analysis.Subject{
		Name:   d.Name,
		Blocks: d.Blocks,
		Start:  d.Start,
		End:    d.Start + uint64(d.CodeSize),
	}, nil)
	return d
}

// parseRVAs accepts decimal or 0x-prefixed values, also comma separated.
func parseRVAs(values []string) ([]uint32, error) {
	var out []uint32
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			rva, err := strconv.ParseUint(s, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid rva %q: %w", s, err)
			}
			out = append(out, uint32(rva))
		}
	}
	if len(out) == 0 {
		return nil, errors.New("at least one --rva is required")
	}
	return out, nil
}

// newLogger logs to the command's stderr, honouring the CILDIS_LOG_* variables.
func newLogger(cmd *cobra.Command, debug bool) *logging.LoggerCloser {
	var lg *logging.LoggerCloser
	if w := cmd.ErrOrStderr(); w == os.Stderr {
		lg = logging.NewLogger()
	} else {
		lg = logging.NewLoggerWithWriter(w)
	}
	if debug {
		lg.SetLevel(log.DebugLevel)
	}
	return lg
}

// decodeImage opens path, registers a method per rva and decodes them all.
func decodeImage(ctx context.Context, path string, rvas []uint32, workers int, lg *log.Logger) (*peimg.Image, []decodedMethod, error) {
	img, err := peimg.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load file: %w", err)
	}
	if !img.IsManaged() {
		img.Close()
		return nil, nil, fmt.Errorf("%s has no CLI header", path)
	}

	if hdr, err := img.CLIHeader(); err == nil {
		lg.Debug("image", "path", path,
			"runtime", fmt.Sprintf("%d.%d", hdr.MajorRuntimeVersion, hdr.MinorRuntimeVersion),
			"entry", fmt.Sprintf("0x%08X", hdr.EntryPointToken))
	}

	a := assembly.New(img, assembly.WithLogger(lg))
	for _, rva := range rvas {
		if _, err := a.AddMethod(rva); err != nil {
			img.Close()
			return nil, nil, err
		}
	}

	results := a.DecodeAll(ctx, workers)
	out := make([]decodedMethod, len(results))
	for i, r := range results {
		out[i] = summarize(a, r)
	}
	return img, out, nil
}

func newMethodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "method <pe-file>",
		Short: "Decode method bodies of a managed PE image",
		Long: `Parse the method body header at each RVA and decode all methods concurrently.
All methods share one visited map, so bytes reached by several methods are decoded once.`,
		Example: `
cildis method app.dll --rva 0x2050 --rva 0x2078
cildis method app.dll --rva 0x2050,0x2078 --workers 4 --json
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			raw, _ := cmd.Flags().GetStringSlice("rva")
			rvas, err := parseRVAs(raw)
			if err != nil {
				return err
			}

			lg := newLogger(cmd, cfg.Debug)
			defer lg.Close()

			img, methods, err := decodeImage(cmd.Context(), args[0], rvas, cfg.Workers, lg.Logger)
			if err != nil {
				return err
			}
			defer img.Close()

			if err := writeMethods(cmd.OutOrStdout(), cfg.Format, methods, img.Data()); err != nil {
				return err
			}

			failed := 0
			for _, m := range methods {
				if m.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d methods failed to decode", failed, len(methods))
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("rva", nil, "RVA of a method body header (repeatable)")
	cmd.Flags().Int("workers", 0, "Methods decoded in parallel (0 for one per CPU)")
	addFormatFlags(cmd)
	return cmd
}

func writeMethods(w io.Writer, format string, methods []decodedMethod, data []byte) error {
	if format == formatJSON {
		out := make([]methodJSON, len(methods))
		for i, m := range methods {
			out[i] = methodJSON{
				Name:     m.Name,
				RVA:      hexAddr(uint64(m.RVA)),
				CodeSize: m.CodeSize,
				Blocks:   toBlocksJSON(m.Blocks, data),
				Findings: toFindingsJSON(m.Findings),
			}
			if m.Err != nil {
				out[i].Error = m.Err.Error()
			}
		}
		return writeJSON(w, out)
	}

	for i, m := range methods {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch {
		case m.Err != nil:
			fmt.Fprintf(w, "; %s: %v\n", m.Name, m.Err)
			continue
		case m.Shared():
			fmt.Fprintf(w, "; %s: body already decoded by another method\n", m.Name)
			continue
		}
		if err := renderBlocks(w, format, m.Name, m.Blocks, m.Findings); err != nil {
			return err
		}
		if format == formatListing && m.CodeSize > 0 {
			fmt.Fprintf(w, "; coverage: %d/%d bytes\n", m.Coverage.Decoded, m.CodeSize)
		}
	}

	if format == formatReport && len(methods) > 1 {
		rows := make([]listing.MethodSummary, len(methods))
		for i, m := range methods {
			rows[i] = listing.MethodSummary{Name: m.Name, Blocks: m.Blocks, Coverage: m.Coverage, Err: m.Err}
		}
		fmt.Fprintln(w)
		return writeMarkdown(w, listing.Overview(fmt.Sprintf("%d methods", len(methods)), rows))
	}
	return nil
}
