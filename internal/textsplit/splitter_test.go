// File path: internal/textsplit/splitter_test.go
package textsplit

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nicodishanthj/semmatch/internal/common"
)

func mustSplitter(t *testing.T, opts ...Option) *Splitter {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected splitter error: %v", err)
	}
	return s
}

func TestSplitOverlappingWords(t *testing.T) {
	s := mustSplitter(t, WithChunkSize(7), WithChunkOverlap(3), WithSeparator(" "))
	got := s.Split("foo bar baz 123")
	want := []string{"foo bar", "bar baz", "baz 123"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitRejectsOverlapNotSmallerThanSize(t *testing.T) {
	if _, err := New(WithChunkSize(10), WithChunkOverlap(10)); !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := New(WithChunkSize(10), WithChunkOverlap(20)); !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := mustSplitter(t, WithChunkSize(10), WithChunkOverlap(2), WithSeparator(" "))
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil chunks for empty input, got %v", got)
	}
}

func TestSplitOversizedPiecePassesThrough(t *testing.T) {
	s := mustSplitter(t, WithChunkSize(5), WithChunkOverlap(1), WithSeparator(" "))
	got := s.Split("abcdefghij on end")
	if len(got) == 0 {
		t.Fatal("expected chunks")
	}
	if got[0] != "abcdefghij" {
		t.Fatalf("expected oversized piece emitted intact, got %q", got[0])
	}
	for _, chunk := range got[1:] {
		if RuneLength(chunk) > 5 {
			t.Fatalf("chunk %q exceeds size budget", chunk)
		}
	}
}

func TestSplitEmptySeparatorUsesCharacters(t *testing.T) {
	s := mustSplitter(t, WithChunkSize(4), WithChunkOverlap(2), WithSeparator(""))
	got := s.Split("abcdef")
	want := []string{"abcd", "cdef"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitCustomLengthFunc(t *testing.T) {
	// Every piece costs 1, so chunks hold exactly three pieces with a
	// one-piece overlap.
	s := mustSplitter(t,
		WithChunkSize(3), WithChunkOverlap(1), WithSeparator(" "),
		WithLengthFunc(func(str string) int {
			if str == " " {
				return 0
			}
			if str == "" {
				return 0
			}
			return 1
		}))
	got := s.Split("a b c d e")
	want := []string{"a b c", "c d e"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitReconstructsSource(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"short words", "alpha beta gamma delta epsilon zeta", 12, 5},
		{"no overlap", "one two three four five six seven", 9, 0},
		{"tight budget", "aa bb cc dd ee ff gg hh", 5, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustSplitter(t, WithChunkSize(tc.size), WithChunkOverlap(tc.overlap), WithSeparator(" "))
			chunks := s.Split(tc.text)
			if len(chunks) == 0 {
				t.Fatal("expected chunks")
			}
			rebuilt := chunks[0]
			for i := 1; i < len(chunks); i++ {
				prevPieces := strings.Split(chunks[i-1], " ")
				pieces := strings.Split(chunks[i], " ")
				// Strip the longest piece-boundary suffix of the previous
				// chunk that prefixes this one; the rest is new material.
				drop := 0
				for k := len(pieces) - 1; k > 0; k-- {
					if k > len(prevPieces) {
						continue
					}
					if reflect.DeepEqual(prevPieces[len(prevPieces)-k:], pieces[:k]) {
						drop = k
						break
					}
				}
				rest := pieces[drop:]
				if len(rest) > 0 {
					rebuilt += " " + strings.Join(rest, " ")
				}
			}
			if rebuilt != tc.text {
				t.Fatalf("reconstruction mismatch: got %q want %q (chunks %v)", rebuilt, tc.text, chunks)
			}
		})
	}
}
