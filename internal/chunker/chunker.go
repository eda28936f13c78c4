// Package chunker splits normalised document text into overlapping
// fixed-size chunks with deterministic boundaries.
package chunker

// DefaultMaxLength is the default number of characters per chunk.
const DefaultMaxLength = 1000

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultOverlap = 200

// Span is one chunk of text with its offsets into the source.
type Span struct {
	// Text is the chunk content.
	Text string

	// Start and End are character offsets into the source text.
	Start int
	End   int
}

// Splitter produces overlapping chunks. Splitting is pure: the same
// text and configuration always yield the same spans. Callers are
// responsible for whitespace normalisation before splitting.
type Splitter struct {
	maxLength int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxLength sets the chunk size in characters.
func WithMaxLength(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxLength: DefaultMaxLength,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room to advance
	if s.overlap >= s.maxLength {
		s.overlap = s.maxLength / 4
	}

	return s
}

// MaxLength returns the configured chunk size.
func (s *Splitter) MaxLength() int { return s.maxLength }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split divides text into overlapping spans. Each span except possibly
// the last is at most maxLength characters. When a window would cut
// mid-word, the cut moves back to the nearest newline or space past the
// window's midpoint so boundaries land on whitespace where possible.
// Consecutive spans overlap by the configured overlap, so concatenating
// spans with overlaps removed reconstructs the input exactly.
func (s *Splitter) Split(text string) []Span {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimated := textLen/(s.maxLength-s.overlap) + 1
	spans := make([]Span, 0, estimated)

	start := 0
	for start < textLen {
		end := start + s.maxLength
		if end >= textLen {
			spans = append(spans, Span{Text: text[start:], Start: start, End: textLen})
			break
		}

		// Trim the window back to a whitespace boundary, but never
		// before the midpoint: a boundary that early would shrink the
		// chunk below half size and balloon the chunk count.
		if cut := boundaryBefore(text, start+s.maxLength/2, end); cut > 0 {
			end = cut
		}

		spans = append(spans, Span{Text: text[start:end], Start: start, End: end})

		next := end - s.overlap
		if next <= start {
			// Degenerate configuration; advance without overlap
			next = end
		}
		start = next
	}

	return spans
}

// boundaryBefore searches backward from end (exclusive) for the nearest
// newline or space strictly after mid. Returns 0 when no such boundary
// exists and the hard cutoff must stand.
func boundaryBefore(text string, mid, end int) int {
	for i := end - 1; i > mid; i-- {
		if text[i] == '\n' || text[i] == ' ' {
			return i
		}
	}
	return 0
}
