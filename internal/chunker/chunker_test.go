// ABOUTME: Unit tests for the character-window splitter
// ABOUTME: Covers overlap arithmetic, size bounds, and lossless rejoin
package chunker

import (
	"strings"
	"testing"
)

func TestSplit_EmptyInput(t *testing.T) {
	chunks := Split("", 1000, 200)
	if chunks != nil {
		t.Errorf("Expected nil for empty input, got %d chunks", len(chunks))
	}
}

func TestSplit_ShortInput(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	chunks := Split(text, 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for short input, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("Single chunk should equal the whole input, got %q", chunks[0])
	}
}

func TestSplit_ExactBoundary(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := Split(text, 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("Input of exactly maxSize should yield 1 chunk, got %d", len(chunks))
	}
}

func TestSplit_OverlapArithmetic(t *testing.T) {
	// 2500 chars with maxSize=1000, overlap=200 → windows
	// [0,1000), [800,1800), [1600,2500)
	var sb strings.Builder
	for i := 0; i < 2500; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks := Split(text, 1000, 200)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	if chunks[0] != text[0:1000] {
		t.Errorf("Chunk 0 is not text[0:1000]")
	}
	if chunks[1] != text[800:1800] {
		t.Errorf("Chunk 1 is not text[800:1800]")
	}
	if chunks[2] != text[1600:2500] {
		t.Errorf("Chunk 2 is not text[1600:2500]")
	}

	// Consecutive chunks share exactly the overlap
	if chunks[0][800:] != chunks[1][:200] {
		t.Errorf("Chunks 0 and 1 do not overlap by 200 chars")
	}
	if chunks[1][800:] != chunks[2][:200] {
		t.Errorf("Chunks 1 and 2 do not overlap by 200 chars")
	}
}

func TestSplit_SizeBound(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		maxSize int
		overlap int
	}{
		{"even multiple", 4000, 1000, 200},
		{"uneven tail", 3317, 1000, 200},
		{"tiny windows", 95, 10, 3},
		{"just over one window", 1001, 1000, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)
			chunks := Split(text, tt.maxSize, tt.overlap)
			for i, chunk := range chunks {
				if len(chunk) > tt.maxSize {
					t.Errorf("Chunk %d exceeds maxSize: %d > %d", i, len(chunk), tt.maxSize)
				}
			}
		})
	}
}

func TestSplit_RejoinReconstructs(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
		overlap int
	}{
		{"short sentence", "The quick brown fox jumps over the lazy dog.", 1000, 200},
		{"multi window", strings.Repeat("lorem ipsum dolor sit amet ", 200), 1000, 200},
		{"small overlap", strings.Repeat("abc def ", 100), 50, 10},
		{"unicode", strings.Repeat("héllo wörld ünïcode ", 120), 100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.maxSize, tt.overlap)
			rejoined := Rejoin(chunks, tt.overlap)
			if rejoined != tt.text {
				t.Errorf("Rejoin did not reconstruct input: got %d chars, want %d",
					len(rejoined), len(tt.text))
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("determinism matters for indexing ", 100)
	a := Split(text, 500, 100)
	b := Split(text, 500, 100)
	if len(a) != len(b) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

func TestSplit_InvalidParamsFallBack(t *testing.T) {
	text := strings.Repeat("y", 50)
	// overlap >= maxSize would never terminate without the fallback
	chunks := Split(text, 10, 10)
	if len(chunks) == 0 {
		t.Fatal("Expected chunks despite invalid overlap")
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("Chunk %d exceeds maxSize after fallback: %d", i, len(chunk))
		}
	}
}
