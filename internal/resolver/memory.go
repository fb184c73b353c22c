package resolver

import (
	"context"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/parser"
)

// Memory is an in-memory Strategy backed by pre-registered modules. It is
// the strategy of choice for tests and for callers that already hold parsed
// sources.
type Memory struct {
	modules map[string][]*ast.Module
}

// NewMemory builds an empty in-memory strategy.
func NewMemory() *Memory {
	return &Memory{modules: map[string][]*ast.Module{}}
}

// Register adds one parsed module. Registering the same reference twice makes
// that reference ambiguous.
func (s *Memory) Register(m *ast.Module) {
	s.modules[m.Ref()] = append(s.modules[m.Ref()], m)
}

// RegisterSource parses a source text and registers every module it defines.
func (s *Memory) RegisterSource(src string) error {
	file, err := parser.Parse(src)
	if err != nil {
		return err
	}
	for _, m := range file.Modules {
		s.Register(m)
	}
	return nil
}

// Load implements Strategy.
func (s *Memory) Load(_ context.Context, ref Ref) (*ast.Module, error) {
	key := ref.String()
	switch found := s.modules[key]; len(found) {
	case 0:
		return nil, &ResolutionError{Kind: NotFound, Ref: key}
	case 1:
		return found[0], nil
	default:
		return nil, &ResolutionError{Kind: AmbiguousVersion, Ref: key}
	}
}
