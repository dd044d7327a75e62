package analysis

import "cildis/internal/visitmap"

// Gap is a run of bytes no decoder reached.
type Gap struct {
	Offset int
	Length int
}

// CoverageReport describes how much of a file region was decoded.
type CoverageReport struct {
	Start, End int // file offsets, End exclusive
	Decoded    int
	Gaps       []Gap
}

// Ratio returns the decoded fraction of the region.
func (r CoverageReport) Ratio() float64 {
	if r.End <= r.Start {
		return 0
	}
	return float64(r.Decoded) / float64(r.End-r.Start)
}

// Coverage reports visited bytes and unvisited gaps of the map within [start, end).
func Coverage(m *visitmap.Map, start, end int) CoverageReport {
	start = max(start, 0)
	end = min(end, m.Len())
	r := CoverageReport{Start: start, End: end}
	if start >= end {
		return r
	}

	snap := m.Snapshot()
	for i := uint(start); i < uint(end); {
		hole, ok := snap.NextClear(i)
		if !ok || hole >= uint(end) {
			r.Decoded += end - int(i)
			break
		}
		r.Decoded += int(hole - i)

		next, ok := snap.NextSet(hole)
		if !ok || next > uint(end) {
			next = uint(end)
		}
		r.Gaps = append(r.Gaps, Gap{Offset: int(hole), Length: int(next - hole)})
		i = next
	}
	return r
}
