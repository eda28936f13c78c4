// Package extractors provides implementations of the Extractor interface
// for various document formats. Each extractor knows how to pull plain
// text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup. The registry
// probes availability once, logs what is usable, and dispatches by
// detected MIME type and priority. Unsupported or corrupt files yield
// empty text rather than errors; the ingestion pipeline turns empty
// text into a per-document validation failure.
package extractors

import (
	"context"
	"net/http"
	"sort"

	"github.com/gabriel-vasile/mimetype"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects the best available extractor per MIME type.
type Registry struct {
	byMIME      map[string][]driven.Extractor
	unavailable map[string]error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME:      make(map[string][]driven.Extractor),
		unavailable: make(map[string]error),
	}
}

// Register adds an extractor. Availability is probed once here: an
// extractor that cannot run in this process is recorded and skipped at
// dispatch time, with a single startup log line instead of per-call
// failures.
func (r *Registry) Register(e driven.Extractor) {
	if err := e.Available(); err != nil {
		r.unavailable[e.Name()] = err
		logger.Warn("Extractor %s unavailable: %v", e.Name(), err)
		return
	}

	for _, mt := range e.SupportedMIMETypes() {
		r.byMIME[mt] = append(r.byMIME[mt], e)
		// Highest priority first
		sort.SliceStable(r.byMIME[mt], func(i, j int) bool {
			return r.byMIME[mt][i].Priority() > r.byMIME[mt][j].Priority()
		})
	}
	logger.Debug("Extractor registered: %s (priority %d)", e.Name(), e.Priority())
}

// Unavailable returns the extractors that failed their availability
// probe, keyed by name.
func (r *Registry) Unavailable() map[string]error {
	out := make(map[string]error, len(r.unavailable))
	for k, v := range r.unavailable {
		out[k] = v
	}
	return out
}

// SupportedMIMETypes returns all MIME types with at least one available
// extractor.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Extract detects the file's MIME type and dispatches to the best
// matching extractor. When every candidate fails, or none exists, the
// result is empty text, never an error: one odd file must not abort a
// batch.
func (r *Registry) Extract(ctx context.Context, raw *driven.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return &driven.ExtractResult{}, nil
	}

	if raw.MIMEType == "" {
		raw.MIMEType = DetectMIME(raw.Content)
	}

	candidates := r.byMIME[stripParams(raw.MIMEType)]
	if len(candidates) == 0 {
		logger.Debug("No extractor for %s (%s)", raw.Path, raw.MIMEType)
		return &driven.ExtractResult{}, nil
	}

	for _, e := range candidates {
		result, err := e.Extract(ctx, raw)
		if err != nil {
			logger.Debug("Extractor %s failed on %s: %v", e.Name(), raw.Path, err)
			continue
		}
		return result, nil
	}

	logger.Warn("All extractors failed for %s, treating as empty", raw.Path)
	return &driven.ExtractResult{}, nil
}

// DetectMIME determines a MIME type using stdlib detection first and
// falling back to the broader mimetype library when ambiguous.
func DetectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return stripParams(mt)
	}
	return stripParams(mimetype.Detect(head).String())
}

// stripParams drops MIME parameters such as "; charset=utf-8".
func stripParams(mt string) string {
	for i := 0; i < len(mt); i++ {
		if mt[i] == ';' {
			return mt[:i]
		}
	}
	return mt
}
