package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tagDetector string

func (d tagDetector) Detect(s Subject, findings []Finding) []Finding {
	return append(findings, Finding{Kind: string(d), Subject: s.Name, Block: -1})
}

type dropDetector struct{}

func (dropDetector) Detect(_ Subject, findings []Finding) []Finding {
	return findings[:0]
}

func TestDetectorChain(t *testing.T) {
	s := Subject{Name: "m"}

	got := NewDetectorChain(tagDetector("a"), tagDetector("b")).Detect(s, nil)
	assert.Equal(t, []Finding{
		{Kind: "a", Subject: "m", Block: -1},
		{Kind: "b", Subject: "m", Block: -1},
	}, got)

	got = NewDetectorChain(tagDetector("a"), dropDetector{}, tagDetector("c")).Detect(s, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Kind)

	assert.Empty(t, NewDetectorChain().Detect(s, nil))
}

func TestSubjectContains(t *testing.T) {
	s := Subject{Start: 0x1000, End: 0x1006}
	assert.True(t, s.Contains(0x1000))
	assert.True(t, s.Contains(0x1005))
	assert.False(t, s.Contains(0x1006))
	assert.False(t, s.Contains(0xFFF))
}
