package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	e := New()
	mimeTypes := e.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestAvailable(t *testing.T) {
	assert.NoError(t, New().Available())
}

func TestExtract_Success(t *testing.T) {
	e := New()

	result, err := e.Extract(context.Background(), &driven.RawFile{
		Path:     "/path/to/notes.txt",
		MIMEType: "text/plain",
		Content:  []byte("This is plain text content."),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "This is plain text content.", result.Text)
	assert.Equal(t, "text", result.FileType)
	assert.Equal(t, ".txt", result.Metadata["extension"])
}

func TestExtract_CodeFileType(t *testing.T) {
	tests := []struct {
		path     string
		fileType string
	}{
		{"/src/main.go", "code"},
		{"/src/app.py", "code"},
		{"/src/config.yaml", "code"},
		{"/docs/readme.md", "text"},
		{"/docs/notes.txt", "text"},
	}

	e := New()
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			result, err := e.Extract(context.Background(), &driven.RawFile{
				Path:    tc.path,
				Content: []byte("content"),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.fileType, result.FileType)
		})
	}
}

func TestExtract_InvalidUTF8YieldsEmptyText(t *testing.T) {
	e := New()

	result, err := e.Extract(context.Background(), &driven.RawFile{
		Path:    "/path/binary.txt",
		Content: []byte{0xff, 0xfe, 0x00, 0x41},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestExtract_UnicodeContent(t *testing.T) {
	e := New()
	content := "日本語テキスト\nПривет мир\n🚀"

	result, err := e.Extract(context.Background(), &driven.RawFile{
		Path:    "/path/unicode.txt",
		Content: []byte(content),
	})
	require.NoError(t, err)
	assert.Equal(t, content, result.Text)
}
