package analysis

import "cildis/internal/disasm"

// Subject is one decoded method or fragment handed to detectors.
type Subject struct {
	Name   string
	Blocks []disasm.BasicBlock
	// Start and End bound the decoded code region in RVA space, End exclusive.
	Start, End uint64
}

// Contains reports whether rva lies in the decoded region.
func (s Subject) Contains(rva uint64) bool {
	return rva >= s.Start && rva < s.End
}

// Finding is one observation about a subject.
type Finding struct {
	Kind     string                 // detector-specific tag, e.g. "misaligned"
	Subject  string                 // Subject.Name
	Block    int                    // block ID, -1 when not tied to a block
	RVA      uint64                 // address the finding points at
	Comment  string                 // Human-readable summary
	Metadata map[string]interface{} // Detector-specific metadata
}

// Detector interface for pattern detection on decoded blocks
type Detector interface {
	// Detect inspects the subject and returns findings with its own appended.
	// It can modify existing findings or add new ones
	Detect(s Subject, findings []Finding) []Finding
}

// DetectorChain runs multiple detectors in sequence
type DetectorChain struct {
	detectors []Detector
}

// NewDetectorChain creates a new detector chain
func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{
		detectors: detectors,
	}
}

// Detect runs all detectors in sequence
func (dc *DetectorChain) Detect(s Subject, findings []Finding) []Finding {
	result := findings
	for _, detector := range dc.detectors {
		result = detector.Detect(s, result)
	}
	return result
}
