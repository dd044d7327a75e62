// Package assembly ties method bodies in a PE image to the disassembler. All methods of one
// Assembly share a single visited map, so bodies that overlap are expanded only once even
// when they are decoded concurrently.
package assembly

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"cildis/internal/cilerrors"
	"cildis/internal/disasm"
	"cildis/internal/logging"
	"cildis/internal/methodbody"
	"cildis/internal/visitmap"
)

// Image is the file layer an Assembly reads method bodies from.
type Image interface {
	disasm.File
	// TailRVA returns the bytes from rva to the end of its section.
	TailRVA(rva uint32) ([]byte, bool)
}

// Method is one method body. Its blocks are written at most once.
type Method struct {
	rva    uint32
	hasRVA bool
	body   *methodbody.Body
	blocks atomic.Pointer[[]disasm.BasicBlock]
}

// NewMethod returns a method whose body header is body, located at rva.
func NewMethod(rva uint32, body *methodbody.Body) *Method {
	return &Method{rva: rva, hasRVA: true, body: body}
}

// NewAbstractMethod returns a method without a body.
func NewAbstractMethod() *Method {
	return &Method{}
}

func (m *Method) RVA() (uint32, bool) {
	return m.rva, m.hasRVA
}

func (m *Method) Name() string {
	if !m.hasRVA {
		return "abstract"
	}
	return fmt.Sprintf("method_%08X", m.rva)
}

func (m *Method) Body() *methodbody.Body {
	return m.body
}

func (m *Method) HeaderSize() int {
	if m.body == nil {
		return 0
	}
	return m.body.HeaderSize
}

// CodeRVA returns the address of the first instruction.
func (m *Method) CodeRVA() uint32 {
	return m.rva + uint32(m.HeaderSize())
}

// ExceptionHandlers returns the body's clauses with try and handler offsets moved into the
// RVA space of the code, which is where block addresses live.
func (m *Method) ExceptionHandlers() []disasm.ExceptionHandler {
	if m.body == nil {
		return nil
	}
	return methodbody.Rebase(m.body.Handlers, m.CodeRVA())
}

// SetBlocks stores blocks unless a result is already present.
func (m *Method) SetBlocks(blocks []disasm.BasicBlock) bool {
	return m.blocks.CompareAndSwap(nil, &blocks)
}

// Blocks returns the stored blocks, or false if the method was not decoded yet.
func (m *Method) Blocks() ([]disasm.BasicBlock, bool) {
	p := m.blocks.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Result is the outcome of decoding one method.
type Result struct {
	Method *Method
	Err    error
}

type Assembly struct {
	img     Image
	visited *visitmap.Map
	methods []*Method
	log     *log.Logger
}

type Option func(*Assembly)

// WithLogger sets the logger used for per-method diagnostics.
func WithLogger(lg *log.Logger) Option {
	return func(a *Assembly) { a.log = lg }
}

// New returns an assembly over img with a visited map covering the whole file.
func New(img Image, opts ...Option) *Assembly {
	a := &Assembly{
		img:     img,
		visited: visitmap.New(len(img.Data())),
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// AddMethod parses the body header at rva and registers the method.
func (a *Assembly) AddMethod(rva uint32) (*Method, error) {
	raw, ok := a.img.TailRVA(rva)
	if !ok {
		return nil, cilerrors.OutOfBounds("method body at rva 0x%08X is not mapped", rva)
	}
	body, err := methodbody.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("method at rva 0x%08X: %w", rva, err)
	}
	m := NewMethod(rva, body)
	a.methods = append(a.methods, m)
	return m, nil
}

// Add registers an already built method.
func (a *Assembly) Add(m *Method) {
	a.methods = append(a.methods, m)
}

func (a *Assembly) Methods() []*Method {
	return a.methods
}

func (a *Assembly) Visited() *visitmap.Map {
	return a.visited
}

func (a *Assembly) Image() Image {
	return a.img
}

// Decode disassembles one method against the shared visited map.
func (a *Assembly) Decode(m *Method) error {
	return disasm.DecodeMethod(m, a.img, a.visited)
}

// DecodeAll decodes every method on at most workers goroutines. A failing method does not
// stop the others; its error is reported in its Result. Methods not started before ctx is
// done report ctx's error.
func (a *Assembly) DecodeAll(ctx context.Context, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(a.methods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	start := time.Now()
	for i, m := range a.methods {
		results[i].Method = m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			if err := a.Decode(m); err != nil {
				a.log.Warn("decode failed", "method", m.Name(), "err", err)
				results[i].Err = err
				return nil
			}
			if blocks, ok := m.Blocks(); ok {
				a.log.Debug("decoded", "method", m.Name(), "blocks", len(blocks))
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	a.log.Info("decode finished",
		"methods", len(results),
		"failed", failed,
		"visited", a.visited.Count(),
		"elapsed", time.Since(start).Round(time.Microsecond))
	return results
}
