package models

import (
	"fmt"
	"strings"
)

// Framework is the code of one regulatory or standards scheme a document is assessed against.
type Framework string

const (
	FrameworkICO      Framework = "ICO"
	FrameworkDPA      Framework = "DPA"
	FrameworkEUAIAct  Framework = "EU_AI_ACT"
	FrameworkISO42001 Framework = "ISO_42001"
)

// AllFrameworks lists every supported framework in synthesis iteration order.
var AllFrameworks = []Framework{FrameworkICO, FrameworkDPA, FrameworkEUAIAct, FrameworkISO42001}

var frameworkLabels = map[Framework]string{
	FrameworkICO:      "UK ICO",
	FrameworkDPA:      "UK DPA / GDPR",
	FrameworkEUAIAct:  "EU AI Act",
	FrameworkISO42001: "ISO/IEC 42001",
}

// Weights are expressed in percent so the composite score can be computed without float drift.
var frameworkWeights = map[Framework]int{
	FrameworkICO:      40,
	FrameworkDPA:      30,
	FrameworkISO42001: 20,
	FrameworkEUAIAct:  10,
}

// Label returns the display name used in results, scores and reports.
func (f Framework) Label() string {
	if l, ok := frameworkLabels[f]; ok {
		return l
	}
	return string(f)
}

// WeightPercent returns the UK Alignment Score weight of the framework in percent.
func (f Framework) WeightPercent() int {
	return frameworkWeights[f]
}

// Weight returns the UK Alignment Score weight as a fraction.
func (f Framework) Weight() float64 {
	return float64(frameworkWeights[f]) / 100
}

// Valid reports whether f is one of the supported framework codes.
func (f Framework) Valid() bool {
	_, ok := frameworkLabels[f]
	return ok
}

// ParseFramework converts a caller-supplied code into a Framework. Matching is
// case-insensitive and tolerates dashes or spaces in place of underscores.
func ParseFramework(s string) (Framework, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	code = strings.NewReplacer("-", "_", " ", "_").Replace(code)
	f := Framework(code)
	if !f.Valid() {
		return "", fmt.Errorf("unknown framework %q", s)
	}
	return f, nil
}

// ParseFrameworks parses a list of codes, preserving order and dropping repeats.
func ParseFrameworks(codes []string) ([]Framework, error) {
	out := make([]Framework, 0, len(codes))
	seen := make(map[Framework]bool, len(codes))
	for _, c := range codes {
		f, err := ParseFramework(c)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// ContainsFramework reports whether fs includes f.
func ContainsFramework(fs []Framework, f Framework) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}
