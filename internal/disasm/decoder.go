package disasm

import (
	"cildis/internal/cilerrors"
	"cildis/internal/cursor"
	"cildis/internal/visitmap"
)

// Decoder builds basic blocks by following control flow from a starting offset.
//
// The blocks slice is both the result and the work queue: processing a block may append
// new blocks, which a later iteration of Run picks up. Offsets already marked in the
// visited map are never expanded again, so the number of processed blocks is bounded by
// the length of the data.
type Decoder struct {
	c        *cursor.Cursor
	handlers []ExceptionHandler
	visited  *visitmap.Map

	blocks    []BasicBlock
	next      int
	processed int

	startOffset int
	startRVA    uint64
}

// NewDecoder returns a decoder that starts at offset within c's data, which has virtual
// address rva. handlers may be nil. visited may be shared with other decoders running
// concurrently over the same data and must cover all of it.
func NewDecoder(c *cursor.Cursor, offset int, rva uint64, handlers []ExceptionHandler, visited *visitmap.Map) (*Decoder, error) {
	if offset < 0 || offset > c.Len() {
		return nil, cilerrors.OutOfBounds("start offset %d, length %d", offset, c.Len())
	}
	if visited == nil {
		return nil, cilerrors.OutOfBounds("no visited map for %d bytes", c.Len())
	}
	if visited.Len() < c.Len() {
		return nil, cilerrors.OutOfBounds("visited map of %d bytes, data of %d", visited.Len(), c.Len())
	}
	return &Decoder{
		c:           c,
		handlers:    handlers,
		visited:     visited,
		startOffset: offset,
		startRVA:    rva,
	}, nil
}

// Run seeds the entry block, drains the queue and attaches exception handlers.
func (d *Decoder) Run() error {
	d.blocks = append(d.blocks, newBlock(len(d.blocks), d.startRVA, d.startOffset))

	for d.next < len(d.blocks) {
		if err := d.decodeBlock(d.next); err != nil {
			return err
		}
		d.next++
	}

	d.attachHandlers()
	return nil
}

// Blocks returns the decoded blocks. Blocks whose start was already visited are present
// but empty.
func (d *Decoder) Blocks() []BasicBlock {
	return d.blocks
}

// Processed returns how many blocks were actually expanded into instructions.
func (d *Decoder) Processed() int {
	return d.processed
}

func (d *Decoder) decodeBlock(id int) error {
	start := d.blocks[id].Offset
	if start < 0 || start >= d.c.Len() {
		return cilerrors.OutOfBounds("block %d at offset %d, length %d", id, start, d.c.Len())
	}
	if d.visited.Get(start) {
		return nil
	}
	if err := d.c.Seek(start); err != nil {
		return err
	}
	d.processed++

	offset := start
	rva := d.blocks[id].RVA
	for terminated := false; !terminated && offset < d.c.Len(); {
		in, err := DecodeInstruction(d.c, rva)
		if err != nil {
			return err
		}
		size := int(in.Size)

		b := &d.blocks[id]
		b.Instructions = append(b.Instructions, in)
		b.Size += size
		d.visited.SetRange(offset, size, true)

		switch in.Flow {
		case FlowConditionalBranch:
			d.enqueueTargets(in.BranchTargets)
			// fallthrough successor; dropped when the branch is the last instruction
			if next := offset + size; next < d.c.Len() {
				d.enqueue(rva+in.Size, next)
			}
			terminated = true
		case FlowUnconditionalBranch, FlowSwitch:
			d.enqueueTargets(in.BranchTargets)
			terminated = true
		case FlowReturn, FlowThrow:
			terminated = true
		}

		offset += size
		rva += in.Size
	}
	return nil
}

func (d *Decoder) enqueueTargets(targets []uint64) {
	for _, target := range targets {
		off := uint64(d.startOffset) + (target - d.startRVA)
		if off < uint64(d.c.Len()) {
			d.enqueue(target, int(off))
		}
	}
}

func (d *Decoder) enqueue(rva uint64, offset int) {
	d.blocks = append(d.blocks, newBlock(len(d.blocks), rva, offset))
}

func (d *Decoder) attachHandlers() {
	for i, h := range d.handlers {
		for j := range d.blocks {
			if h.Covers(d.blocks[j].RVA) {
				d.blocks[j].Exceptions = append(d.blocks[j].Exceptions, i)
			}
		}
	}
}

// DecodeBlocks builds the blocks reachable from offset in data, which has virtual address
// rva. When maxSize is positive, data is treated as ending at offset+maxSize. Reported
// offsets are relative to the start of data.
func DecodeBlocks(data []byte, offset int, rva uint64, maxSize int) ([]BasicBlock, error) {
	if offset < 0 || offset >= len(data) {
		return nil, cilerrors.OutOfBounds("start offset %d, length %d", offset, len(data))
	}
	if maxSize > 0 && maxSize < len(data)-offset {
		data = data[:offset+maxSize]
	}

	d, err := NewDecoder(cursor.New(data), offset, rva, nil, visitmap.New(len(data)))
	if err != nil {
		return nil, err
	}
	if err := d.Run(); err != nil {
		return nil, err
	}
	return d.Blocks(), nil
}
