package memory

import "fmt"

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Splitter splits content into overlapping fixed-size fragments.
//
// Fragments preserve input order, no fragment exceeds Size, consecutive
// fragments share exactly Overlap characters, and joining the fragments
// minus their overlaps reconstructs the input. For input of length L > Size
// the fragment count is ceil((L - Overlap) / (Size - Overlap)).
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Requires size > 0 and 0 <= overlap < size.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the target chunk size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the overlap length.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns the ordered fragments of content. Empty content yields no
// fragments; content no longer than the chunk size yields exactly one.
func (s *Splitter) Split(content string) []string {
	if content == "" {
		return nil
	}
	if len(content) <= s.size {
		return []string{content}
	}

	step := s.size - s.overlap
	chunks := make([]string, 0, (len(content)-s.overlap+step-1)/step)
	for start := 0; ; start += step {
		end := start + s.size
		if end >= len(content) {
			chunks = append(chunks, content[start:])
			break
		}
		chunks = append(chunks, content[start:end])
	}
	return chunks
}
