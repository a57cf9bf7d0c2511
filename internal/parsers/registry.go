// Package parsers maps scan-type identifiers to the parsers that import them.
package parsers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/parsers/awsprisma"
)

// ErrUnknownScanType is returned by Get for scan types nobody registered.
var ErrUnknownScanType = errors.New("unknown scan type")

// ScanTypeInfo is the static metadata a parser declares for one scan type.
type ScanTypeInfo struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// Registry holds parsers keyed by scan type. It is safe for concurrent use.
type Registry struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	parsers map[string]schemas.Parser
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:  logger.Named("parsers"),
		parsers: make(map[string]schemas.Parser),
	}
}

// Default returns a registry with every built-in parser, configured from cfg.
func Default(logger *zap.Logger, cfg config.ImporterConfig) (*Registry, error) {
	r := NewRegistry(logger)
	prisma := awsprisma.New(
		awsprisma.WithLogger(logger),
		awsprisma.WithLenientDates(cfg.LenientDates),
		awsprisma.WithTitleMaxLength(cfg.TitleMaxLength),
	)
	if err := r.Register(prisma); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds p under every scan type it declares. Registering a scan type
// twice is an error and leaves the registry unchanged.
func (r *Registry) Register(p schemas.Parser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scanTypes := p.ScanTypes()
	if len(scanTypes) == 0 {
		return fmt.Errorf("parser %T declares no scan types", p)
	}
	for _, st := range scanTypes {
		if _, exists := r.parsers[st]; exists {
			return fmt.Errorf("scan type %q is already registered", st)
		}
	}
	for _, st := range scanTypes {
		r.parsers[st] = p
		r.logger.Debug("Registered parser", zap.String("scan_type", st))
	}
	return nil
}

// Get returns the parser registered for scanType.
func (r *Registry) Get(scanType string) (schemas.Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[scanType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScanType, scanType)
	}
	return p, nil
}

// ScanTypes returns all registered scan types in sorted order.
func (r *Registry) ScanTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.parsers))
	for st := range r.parsers {
		out = append(out, st)
	}
	sort.Strings(out)
	return out
}

// Describe returns the metadata of every registered scan type, sorted by name.
func (r *Registry) Describe() []ScanTypeInfo {
	scanTypes := r.ScanTypes()

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ScanTypeInfo, 0, len(scanTypes))
	for _, st := range scanTypes {
		p := r.parsers[st]
		infos = append(infos, ScanTypeInfo{
			Name:        st,
			Label:       p.LabelForScanType(st),
			Description: p.DescriptionForScanType(st),
		})
	}
	return infos
}
