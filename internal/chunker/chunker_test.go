package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.maxLength != DefaultMaxLength {
			t.Errorf("expected maxLength %d, got %d", DefaultMaxLength, s.maxLength)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, s.overlap)
		}
	})

	t.Run("custom max length", func(t *testing.T) {
		s := New(WithMaxLength(500))
		if s.maxLength != 500 {
			t.Errorf("expected maxLength 500, got %d", s.maxLength)
		}
	})

	t.Run("overlap exceeds max length", func(t *testing.T) {
		s := New(WithMaxLength(100), WithOverlap(150))
		if s.overlap >= s.maxLength {
			t.Error("overlap should be reduced when it exceeds max length")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithMaxLength(0), WithOverlap(-1))
		if s.maxLength != DefaultMaxLength {
			t.Errorf("expected default maxLength, got %d", s.maxLength)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", s.overlap)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	spans := New().Split("")
	if len(spans) != 0 {
		t.Errorf("expected 0 spans for empty text, got %d", len(spans))
	}
}

func TestSplit_ShortText(t *testing.T) {
	text := "This fits in a single chunk."
	spans := New(WithMaxLength(100), WithOverlap(20)).Split(text)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != text {
		t.Errorf("expected span text to equal input")
	}
	if spans[0].Start != 0 || spans[0].End != len(text) {
		t.Errorf("expected offsets [0,%d], got [%d,%d]", len(text), spans[0].Start, spans[0].End)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("determinism is a testable property of the splitter ", 60)
	s := New()

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("span counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("span %d differs between runs", i)
		}
	}
}

func TestSplit_LengthBound(t *testing.T) {
	text := strings.Repeat("every chunk except possibly the last stays within bounds ", 80)
	spans := New().Split(text)

	for i, sp := range spans {
		if len(sp.Text) > DefaultMaxLength {
			t.Errorf("span %d exceeds max length: %d", i, len(sp.Text))
		}
		if sp.Text != text[sp.Start:sp.End] {
			t.Errorf("span %d offsets do not match text", i)
		}
	}
}

func TestSplit_Coverage(t *testing.T) {
	text := strings.Repeat("no characters may be dropped between consecutive chunks ", 70)
	spans := New().Split(text)

	var rebuilt strings.Builder
	prevEnd := 0
	for _, sp := range spans {
		if sp.Start > prevEnd {
			t.Fatalf("gap between spans: previous end %d, next start %d", prevEnd, sp.Start)
		}
		rebuilt.WriteString(sp.Text[prevEnd-sp.Start:])
		prevEnd = sp.End
	}

	if rebuilt.String() != text {
		t.Error("concatenating spans with overlaps removed did not reconstruct the input")
	}
}

func TestSplit_HardCutoffWithoutBoundary(t *testing.T) {
	// No whitespace anywhere: the window cannot be trimmed.
	text := strings.Repeat("x", 2500)
	spans := New().Split(text)

	if len(spans) < 3 {
		t.Fatalf("expected at least 3 spans, got %d", len(spans))
	}
	for i, sp := range spans[:len(spans)-1] {
		if len(sp.Text) != DefaultMaxLength {
			t.Errorf("span %d: expected hard cutoff at %d, got %d", i, DefaultMaxLength, len(sp.Text))
		}
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	// ~30 sentences of ~80 characters each, roughly 2600 characters in
	// total: expect 3-4 chunks with boundaries on whitespace rather
	// than mid-sentence.
	var b strings.Builder
	for i := 1; i <= 30; i++ {
		b.WriteString(fmt.Sprintf("S%02d %s ends here. ", i, strings.Repeat("padding words fill the sentence ", 2)))
	}
	text := b.String()

	s := New()
	spans := s.Split(text)

	if len(spans) < 3 || len(spans) > 4 {
		t.Fatalf("expected 3-4 spans for %d characters, got %d", len(text), len(spans))
	}

	for i, sp := range spans {
		if len(sp.Text) > DefaultMaxLength {
			t.Errorf("span %d exceeds max length", i)
		}
		// Every non-final boundary should land after whitespace, not
		// inside a word.
		if i < len(spans)-1 && text[sp.End] != ' ' && text[sp.End] != '\n' {
			t.Errorf("span %d ends mid-word at offset %d (%q)", i, sp.End, text[sp.End])
		}
	}

	// Consecutive spans share the configured overlap.
	for i := 1; i < len(spans); i++ {
		got := spans[i-1].End - spans[i].Start
		if got != DefaultOverlap {
			t.Errorf("spans %d/%d overlap by %d, expected %d", i-1, i, got, DefaultOverlap)
		}
	}
}
