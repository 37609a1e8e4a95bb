// File path: internal/textsplit/splitter.go
package textsplit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nicodishanthj/semmatch/internal/common"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultSeparator    = "\n\n"
)

// LengthFunc maps a string to its cost in whatever unit the chunk size
// budget is expressed in. The default counts runes.
type LengthFunc func(string) int

// RuneLength is the default length function.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// Splitter breaks raw text into bounded, overlapping chunks. Splitting is
// deterministic and carries no state between calls.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separator    string
	length       LengthFunc
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in length-function units.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the trailing overlap carried between chunks.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithSeparator sets the boundary used to break text into atomic pieces.
// An empty separator splits into individual characters.
func WithSeparator(sep string) Option {
	return func(s *Splitter) {
		s.separator = sep
	}
}

// WithLengthFunc overrides the cost function used for the size budget.
func WithLengthFunc(fn LengthFunc) Option {
	return func(s *Splitter) {
		if fn != nil {
			s.length = fn
		}
	}
}

// New constructs a Splitter. The overlap must be strictly smaller than
// the chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separator:    DefaultSeparator,
		length:       RuneLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.chunkOverlap >= s.chunkSize {
		return nil, fmt.Errorf("textsplit: chunk overlap %d must be smaller than chunk size %d: %w",
			s.chunkOverlap, s.chunkSize, common.ErrConfiguration)
	}
	return s, nil
}

// Split breaks text on the separator and greedily merges the pieces into
// chunks no longer than the configured size, retaining a trailing overlap
// between consecutive chunks. A single piece longer than the chunk size
// is emitted as its own oversized chunk with a logged warning.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	if s.separator == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, s.separator)
	}
	return s.merge(pieces)
}

func (s *Splitter) merge(pieces []string) []string {
	sepLen := s.length(s.separator)
	var chunks []string
	var buffer []string
	total := 0

	emit := func() {
		if len(buffer) == 0 {
			return
		}
		chunk := strings.Join(buffer, s.separator)
		if chunk == "" {
			return
		}
		if total > s.chunkSize {
			common.Logger().Warn("textsplit: chunk exceeds size budget",
				"length", total, "chunk_size", s.chunkSize)
		}
		chunks = append(chunks, chunk)
	}

	for _, piece := range pieces {
		pieceLen := s.length(piece)
		add := pieceLen
		if len(buffer) > 0 {
			add += sepLen
		}
		if total+add > s.chunkSize && len(buffer) > 0 {
			emit()
			// Retain a tail of the emitted buffer as overlap, dropping
			// leading pieces until the retained length fits the overlap
			// budget and leaves room for the incoming piece.
			for len(buffer) > 0 {
				overBudget := total > 0 && total+pieceLen+sepLen > s.chunkSize
				if total <= s.chunkOverlap && !overBudget {
					break
				}
				head := s.length(buffer[0])
				if len(buffer) > 1 {
					head += sepLen
				}
				total -= head
				buffer = buffer[1:]
			}
		}
		buffer = append(buffer, piece)
		total += pieceLen
		if len(buffer) > 1 {
			total += sepLen
		}
	}
	emit()
	return chunks
}
