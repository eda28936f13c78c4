package extractors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/extractors/plaintext"
)

// stubExtractor is a configurable test extractor.
type stubExtractor struct {
	name       string
	mimeTypes  []string
	priority   int
	availErr   error
	extractErr error
	text       string
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) SupportedMIMETypes() []string { return s.mimeTypes }

func (s *stubExtractor) Priority() int { return s.priority }

func (s *stubExtractor) Available() error { return s.availErr }

func (s *stubExtractor) Extract(_ context.Context, _ *driven.RawFile) (*driven.ExtractResult, error) {
	if s.extractErr != nil {
		return nil, s.extractErr
	}
	return &driven.ExtractResult{Text: s.text, FileType: "text"}, nil
}

func TestRegister_SkipsUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{
		name:      "broken",
		mimeTypes: []string{"text/plain"},
		availErr:  errors.New("missing system dependency"),
	})

	assert.Empty(t, r.SupportedMIMETypes())
	assert.Contains(t, r.Unavailable(), "broken")
}

func TestExtract_DispatchesByMIME(t *testing.T) {
	r := NewRegistry()
	r.Register(plaintext.New())

	result, err := r.Extract(context.Background(), &driven.RawFile{
		Path:     "/notes.txt",
		MIMEType: "text/plain",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text)
}

func TestExtract_DetectsMIMEWhenUnset(t *testing.T) {
	r := NewRegistry()
	r.Register(plaintext.New())

	result, err := r.Extract(context.Background(), &driven.RawFile{
		Path:    "/notes.txt",
		Content: []byte("plain text with no declared type"),
	})
	require.NoError(t, err)
	assert.Equal(t, "plain text with no declared type", result.Text)
}

func TestExtract_StripsMIMEParams(t *testing.T) {
	r := NewRegistry()
	r.Register(plaintext.New())

	result, err := r.Extract(context.Background(), &driven.RawFile{
		Path:     "/notes.txt",
		MIMEType: "text/plain; charset=utf-8",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text)
}

func TestExtract_PriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{
		name: "fallback", mimeTypes: []string{"text/plain"}, priority: 5, text: "from fallback",
	})
	r.Register(&stubExtractor{
		name: "specific", mimeTypes: []string{"text/plain"}, priority: 50, text: "from specific",
	})

	result, err := r.Extract(context.Background(), &driven.RawFile{
		MIMEType: "text/plain",
		Content:  []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "from specific", result.Text)
}

func TestExtract_FallsThroughOnFailure(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{
		name: "second", mimeTypes: []string{"text/plain"}, priority: 5, text: "recovered",
	})
	r.Register(&stubExtractor{
		name: "first", mimeTypes: []string{"text/plain"}, priority: 50,
		extractErr: errors.New("corrupt input"),
	})

	result, err := r.Extract(context.Background(), &driven.RawFile{
		MIMEType: "text/plain",
		Content:  []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
}

func TestExtract_NoExtractorYieldsEmptyResult(t *testing.T) {
	r := NewRegistry()

	result, err := r.Extract(context.Background(), &driven.RawFile{
		MIMEType: "application/x-unknown",
		Content:  []byte{0x00, 0x01},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestExtract_AllFailYieldsEmptyResult(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{
		name: "only", mimeTypes: []string{"text/plain"}, priority: 5,
		extractErr: errors.New("always fails"),
	})

	result, err := r.Extract(context.Background(), &driven.RawFile{
		MIMEType: "text/plain",
		Content:  []byte("x"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestExtract_NilFile(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/octet-stream", DetectMIME(nil))
	assert.Equal(t, "text/plain", DetectMIME([]byte("just some text")))
	assert.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.4 something")))
}
