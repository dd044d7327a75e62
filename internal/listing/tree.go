package listing

import (
	"fmt"

	"github.com/xlab/treeprint"

	"cildis/internal/analysis"
	"cildis/internal/disasm"
)

// Tree renders name as the root, each block as a branch and its instructions as leaves.
func Tree(name string, blocks []disasm.BasicBlock) string {
	tree := treeprint.New()
	tree.SetValue(name)

	for _, b := range analysis.Canonical(analysis.Link(blocks)) {
		meta := fmt.Sprintf("#%d", b.ID)
		value := fmt.Sprintf("%s size:%d", Label(b.RVA), b.Size)
		if !b.IsExit() {
			value += fmt.Sprintf(" succ:%v", b.Successors)
		}
		branch := tree.AddMetaBranch(meta, value)
		for _, in := range b.Instructions {
			text := in.Mnemonic
			if in.Operand.Kind != disasm.OperandKindNone {
				text += " " + in.Operand.String()
			}
			branch.AddMetaNode(fmt.Sprintf("%08X", in.RVA), text)
		}
	}
	return tree.String()
}
