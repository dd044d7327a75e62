package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/term"

	"cildis/internal/analysis"
	"cildis/internal/cildis/styles"
	"cildis/internal/disasm"
	"cildis/internal/listing"
	"cildis/internal/ui/colorize"
)

type instructionJSON struct {
	RVA      string   `json:"rva"`
	Offset   uint64   `json:"offset"`
	Size     uint64   `json:"size"`
	Bytes    string   `json:"bytes,omitempty"`
	Mnemonic string   `json:"mnemonic"`
	Operand  string   `json:"operand,omitempty"`
	Category string   `json:"category"`
	Flow     string   `json:"flow"`
	Stack    int8     `json:"stack"`
	Targets  []string `json:"targets,omitempty"`
}

type blockJSON struct {
	ID           int               `json:"id"`
	RVA          string            `json:"rva"`
	Offset       int               `json:"offset"`
	Size         int               `json:"size"`
	Predecessors []int             `json:"predecessors,omitempty"`
	Successors   []int             `json:"successors,omitempty"`
	Exceptions   []int             `json:"exceptions,omitempty"`
	Instructions []instructionJSON `json:"instructions"`
}

type findingJSON struct {
	Kind     string                 `json:"kind"`
	Block    int                    `json:"block"`
	RVA      string                 `json:"rva"`
	Comment  string                 `json:"comment"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type methodJSON struct {
	Name     string        `json:"name"`
	RVA      string        `json:"rva,omitempty"`
	CodeSize int           `json:"code_size,omitempty"`
	Error    string        `json:"error,omitempty"`
	Blocks   []blockJSON   `json:"blocks,omitempty"`
	Findings []findingJSON `json:"findings,omitempty"`
}

// sanitizeForJSON cleans a string to be valid UTF-8 and safe for JSON encoding
func sanitizeForJSON(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

func hexAddr(v uint64) string {
	return fmt.Sprintf("0x%08X", v)
}

func toInstructionJSON(in disasm.Instruction, code []byte) instructionJSON {
	out := instructionJSON{
		RVA:      hexAddr(in.RVA),
		Offset:   in.Offset,
		Size:     in.Size,
		Mnemonic: in.Mnemonic,
		Category: in.Category.String(),
		Flow:     in.Flow.String(),
		Stack:    in.Stack.NetEffect,
	}
	if end := in.Offset + in.Size; code != nil && end <= uint64(len(code)) {
		out.Bytes = fmt.Sprintf("% X", code[in.Offset:end])
	}
	if in.Operand.Kind != disasm.OperandKindNone {
		out.Operand = in.Operand.String()
	}
	for _, t := range in.BranchTargets {
		out.Targets = append(out.Targets, hexAddr(t))
	}
	return out
}

func toBlocksJSON(blocks []disasm.BasicBlock, code []byte) []blockJSON {
	linked := analysis.Link(blocks)
	out := make([]blockJSON, 0, len(linked))
	for _, b := range linked {
		if len(b.Instructions) == 0 {
			continue
		}
		bj := blockJSON{
			ID:           b.ID,
			RVA:          hexAddr(b.RVA),
			Offset:       b.Offset,
			Size:         b.Size,
			Predecessors: b.Predecessors,
			Successors:   b.Successors,
			Exceptions:   b.Exceptions,
		}
		for _, in := range b.Instructions {
			bj.Instructions = append(bj.Instructions, toInstructionJSON(in, code))
		}
		out = append(out, bj)
	}
	return out
}

func toFindingsJSON(findings []analysis.Finding) []findingJSON {
	out := make([]findingJSON, 0, len(findings))
	for _, f := range findings {
		out = append(out, findingJSON{
			Kind:     f.Kind,
			Block:    f.Block,
			RVA:      hexAddr(f.RVA),
			Comment:  sanitizeForJSON(f.Comment),
			Metadata: f.Metadata,
		})
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// renderBlocks writes one decoded method or fragment in a text format.
func renderBlocks(w io.Writer, format, name string, blocks []disasm.BasicBlock, findings []analysis.Finding) error {
	switch format {
	case formatTree:
		_, err := fmt.Fprintln(w, listing.Tree(name, blocks))
		return err

	case formatReport:
		return writeMarkdown(w, listing.Markdown(name, blocks, analysis.Analyze(blocks), findings))
	}

	text, err := colorize.ColorizeListing(listing.Text(blocks))
	if err != nil {
		text = listing.Text(blocks)
	}
	fmt.Fprintf(w, "; %s\n", name)
	fmt.Fprint(w, text)
	for _, f := range findings {
		fmt.Fprintf(w, "; %s: %s\n", f.Kind, f.Comment)
	}
	return nil
}

// writeMarkdown prints md, rendered through glamour when w is a colour terminal.
func writeMarkdown(w io.Writer, md string) error {
	if colorize.Enabled() && isTerminal(w) {
		rendered, err := styles.Render(md, terminalWidth(w)-2)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		md = rendered
	}
	_, err := fmt.Fprint(w, md)
	return err
}
