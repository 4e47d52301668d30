// ABOUTME: Deterministic character-window text splitter with configurable overlap
// ABOUTME: Pure function of its inputs, lossless under de-overlapped rejoin
package chunker

// Recommended defaults, matching the ingestion pipeline configuration.
const (
	DefaultMaxSize = 1000
	DefaultOverlap = 200
)

// Split segments text into overlapping windows of at most maxSize characters
// (runes). Consecutive chunks share exactly overlap characters: chunk i+1
// starts maxSize-overlap characters after chunk i. Concatenating the first
// chunk with every following chunk's suffix beyond the overlap reconstructs
// the input exactly.
//
// Empty input returns nil. Input of maxSize characters or fewer returns a
// single chunk equal to the whole input. Invalid parameters fall back to the
// defaults.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = maxSize / 5
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= maxSize {
		return []string{text}
	}

	step := maxSize - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + maxSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		chunks = append(chunks, string(runes[start:end]))
	}
}

// Rejoin reverses Split: it concatenates chunks with the shared overlap
// removed, reconstructing the original text. Exists mainly so the lossless
// property is checkable.
func Rejoin(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	joined := []rune(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		skip := overlap
		if skip > len(runes) {
			skip = len(runes)
		}
		joined = append(joined, runes[skip:]...)
	}
	return string(joined)
}
