package utils

import "unicode"

// Span is a half-open rune range [Start, End) into the split text.
type Span struct {
	Start int
	End   int
}

// SplitSpans splits text into windows of at most chunkSize runes.
// Consecutive windows overlap by 'overlap' runes to preserve context at boundaries.
// A window end is pulled back to the last whitespace in its final fifth, if any,
// so words are not cut in half, unless that window would be no longer than the
// overlap. The result is deterministic for identical input.
func SplitSpans(text string, chunkSize int, overlap int) []Span {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen == 0 {
		return nil
	}
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []Span{{Start: 0, End: totalLen}}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0 // fallback if overlap >= chunkSize
	}

	var spans []Span
	start := 0
	for {
		end := start + chunkSize
		if end >= totalLen {
			spans = append(spans, Span{Start: start, End: totalLen})
			break
		}
		if soft := softBoundary(runes, start, end, chunkSize); soft-overlap > start {
			end = soft
		}
		spans = append(spans, Span{Start: start, End: end})

		// end-overlap > start holds for both cuts, so the walk always advances
		start = end - overlap
	}

	return spans
}

func softBoundary(runes []rune, start, end, chunkSize int) int {
	floor := end - chunkSize/5
	if floor <= start {
		return end
	}
	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

// Slice returns the runes of text covered by span.
func Slice(runes []rune, span Span) string {
	return string(runes[span.Start:span.End])
}
