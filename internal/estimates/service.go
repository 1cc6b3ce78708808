package estimates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonseok/quarters/pkg/logger"
)

// Source supplies the raw report log. Implementations live in
// internal/source (postgres, csv, web); the engine only sees this interface.
type Source interface {
	Fetch(ctx context.Context) ([]RawReport, error)
}

// Service holds the live Next/Previous loaders built from a report source and
// serves queries against them. Reload swaps both loaders atomically, so
// in-flight queries keep the ledger they started with.
// ⭐ SSOT: 로더 생명주기 관리는 이 서비스에서만
type Service struct {
	source  Source
	columns ColumnMap
	logger  *logger.Logger

	mu       sync.RWMutex
	next     *Loader
	previous *Loader
	loadedAt time.Time
}

// Status summarizes the service's loaded state.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Reports  int       `json:"reports"`
	Entities int       `json:"entities"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewService creates an unloaded service; call Reload before serving queries.
func NewService(source Source, columns ColumnMap, log *logger.Logger) *Service {
	return &Service{
		source:  source,
		columns: columns,
		logger:  log,
	}
}

// Reload fetches the report log and rebuilds both loaders. On failure the
// previous loaders stay in place.
func (s *Service) Reload(ctx context.Context) error {
	reports, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch reports: %w", err)
	}

	next, err := NewNextLoader(reports, s.columns, s.logger)
	if err != nil {
		return fmt.Errorf("build next loader: %w", err)
	}
	previous, err := NewPreviousLoader(reports, s.columns, s.logger)
	if err != nil {
		return fmt.Errorf("build previous loader: %w", err)
	}

	s.mu.Lock()
	s.next = next
	s.previous = previous
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"reports":  len(reports),
		"entities": len(next.Ledger().Entities()),
	}).Info("Reloaded estimate report log")

	return nil
}

// Loader returns the loader for the named policy ("next" or "previous").
func (s *Service) Loader(policy string) (*Loader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch policy {
	case "next":
		if s.next == nil {
			return nil, fmt.Errorf("report log not loaded")
		}
		return s.next, nil
	case "previous":
		if s.previous == nil {
			return nil, fmt.Errorf("report log not loaded")
		}
		return s.previous, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", policy)
	}
}

// Run resolves the named policy and executes the query.
func (s *Service) Run(ctx context.Context, policy string, q Query) (*Table, error) {
	loader, err := s.Loader(policy)
	if err != nil {
		return nil, err
	}
	return loader.Run(ctx, q)
}

// Status reports whether the service is loaded and how much it holds.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{LoadedAt: s.loadedAt}
	if s.next != nil {
		st.Loaded = true
		st.Reports = s.next.Ledger().Len()
		st.Entities = len(s.next.Ledger().Entities())
	}
	return st
}
