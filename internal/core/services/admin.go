package services

import (
	"context"
	"fmt"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure AdminService implements the interface.
var _ driving.StoreAdmin = (*AdminService)(nil)

// AdminService exposes store maintenance operations to the CLI.
type AdminService struct {
	store   driven.VectorStore
	backend driven.Backend
}

// NewAdminService creates a new admin service for the active store.
func NewAdminService(store driven.VectorStore, backend driven.Backend) *AdminService {
	return &AdminService{store: store, backend: backend}
}

// Status reports the active backend and entry count.
func (s *AdminService) Status(ctx context.Context) (string, int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return string(s.backend), 0, fmt.Errorf("count entries: %w", err)
	}
	return string(s.backend), count, nil
}

// Clear removes every stored entry.
func (s *AdminService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	logger.Info("Vector store cleared (%s backend)", s.backend)
	return nil
}
