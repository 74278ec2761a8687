package parser

import (
	"strings"

	"document-chat/internal/models"
)

// separators tried in order when looking for a chunk boundary: paragraph
// break, line break, word break, then a hard character cut.
var separators = []string{"\n\n", "\n", " "}

// SplitText splits text into ordered chunks of at most maxChars bytes, where
// each chunk after the first repeats the last overlapChars bytes of its
// predecessor. The split is a pure function of its inputs: concatenating the
// first chunk with every later chunk minus its leading overlap reproduces
// the input exactly (see Reassemble).
func SplitText(text string, maxChars, overlapChars int) []models.Chunk {
	if maxChars <= 0 || len(text) == 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	var parts []string
	start := 0
	for {
		if len(text)-start <= maxChars {
			parts = append(parts, text[start:])
			break
		}
		window := text[start : start+maxChars]
		end := start + cutPoint(window, overlapChars)
		parts = append(parts, text[start:end])
		start = end - overlapChars
	}

	chunks := make([]models.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = models.Chunk{Content: part, SequenceIndex: i}
	}
	return chunks
}

// cutPoint picks where to end the current chunk within window, preferring
// the latest paragraph, line or word boundary. The cut must leave more than
// overlapChars behind so the next chunk makes progress.
func cutPoint(window string, overlapChars int) int {
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			cut := idx + len(sep)
			if cut > overlapChars {
				return cut
			}
		}
	}
	return len(window)
}

// Reassemble inverts SplitText: it drops the leading overlap of every chunk
// after the first and concatenates the remainders.
func Reassemble(chunks []models.Chunk, overlapChars int) string {
	var sb strings.Builder
	for i, chunk := range chunks {
		content := chunk.Content
		if i > 0 && len(content) >= overlapChars {
			content = content[overlapChars:]
		}
		sb.WriteString(content)
	}
	return sb.String()
}
