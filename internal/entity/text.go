package entity

import "strings"

// Line is one recognized text line, optionally carrying the recognizer's
// confidence (0.0–1.0) and a bounding region. Confidence 0 means unknown.
type Line struct {
	Text       string
	Confidence float32
	Region     *Region
}

// Region is a spatial bounding box in page coordinates.
type Region struct {
	X, Y, W, H float64
}

// ExtractedText is the ordered sequence of recognized lines for one document.
// It is produced by the acquisition collaborator and consumed read-only by
// the field extractors.
type ExtractedText struct {
	Lines []Line
}

// NewExtractedText splits plain text into lines with unknown confidence.
func NewExtractedText(text string) ExtractedText {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, Line{Text: l})
	}
	return ExtractedText{Lines: lines}
}

// Join returns the full text with lines separated by newlines.
func (t ExtractedText) Join() string {
	parts := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// IsEmpty reports whether no line carries any non-blank text.
func (t ExtractedText) IsEmpty() bool {
	for _, l := range t.Lines {
		if strings.TrimSpace(l.Text) != "" {
			return false
		}
	}
	return true
}
