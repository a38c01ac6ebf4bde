package analyzer

import "unicode/utf8"

// Chunk is one contiguous slice of the analyzed text. Offset is the byte
// position of the chunk within the full text, used to re-base suggestion
// offsets.
type Chunk struct {
	Text   string
	Offset int
}

// SplitChunks cuts text into contiguous, non-overlapping chunks of at most
// size bytes. Boundaries snap back to rune starts so a multi-byte character
// is never split between chunks.
func SplitChunks(text string, size int) []Chunk {
	if text == "" {
		return nil
	}
	if size <= 0 || size >= len(text) {
		return []Chunk{{Text: text, Offset: 0}}
	}

	var chunks []Chunk
	for start := 0; start < len(text); {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			// A single rune wider than size: step forward instead.
			if end == start {
				end = start + size
				for end < len(text) && !utf8.RuneStart(text[end]) {
					end++
				}
			}
		}

		chunks = append(chunks, Chunk{Text: text[start:end], Offset: start})
		start = end
	}

	return chunks
}
