package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/ctxlog"
	"github.com/vk/wodc/internal/parser"
)

const sourceExt = ".wod"

// FS is a filesystem Strategy: it indexes every *.wod file under the given
// search paths once and serves lookups from that index. Search paths that do
// not exist are skipped.
type FS struct {
	paths []string

	once     sync.Once
	modules  map[string][]*ast.Module
	fileErrs []error
}

// NewFS builds a filesystem strategy over the given search paths.
func NewFS(paths ...string) *FS {
	return &FS{paths: paths}
}

// Load implements Strategy. The first call walks and parses the search
// paths; later calls only consult the index.
func (s *FS) Load(ctx context.Context, ref Ref) (*ast.Module, error) {
	s.once.Do(func() { s.index(ctx) })

	key := ref.String()
	switch found := s.modules[key]; len(found) {
	case 1:
		return found[0], nil
	case 0:
		if len(s.fileErrs) > 0 {
			return nil, &ResolutionError{Kind: ParseFailed, Ref: key, Err: errors.Join(s.fileErrs...)}
		}
		return nil, &ResolutionError{Kind: NotFound, Ref: key}
	default:
		return nil, &ResolutionError{Kind: AmbiguousVersion, Ref: key,
			Err: fmt.Errorf("%d files define this reference", len(found))}
	}
}

func (s *FS) index(ctx context.Context) {
	log := ctxlog.FromContext(ctx)
	s.modules = map[string][]*ast.Module{}

	for _, root := range s.paths {
		if _, err := os.Stat(root); err != nil {
			log.Debug("skipping missing search path", "path", root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, sourceExt) {
				return nil
			}
			src, err := os.ReadFile(path)
			if err != nil {
				s.fileErrs = append(s.fileErrs, fmt.Errorf("%s: %w", path, err))
				return nil
			}
			file, err := parser.Parse(string(src))
			if err != nil {
				s.fileErrs = append(s.fileErrs, fmt.Errorf("%s: %w", path, err))
				return nil
			}
			for _, m := range file.Modules {
				s.modules[m.Ref()] = append(s.modules[m.Ref()], m)
			}
			log.Debug("indexed source file", "path", path, "modules", len(file.Modules))
			return nil
		})
		if err != nil {
			s.fileErrs = append(s.fileErrs, fmt.Errorf("%s: %w", root, err))
		}
	}
	log.Debug("module index built", "refs", len(s.modules), "file_errors", len(s.fileErrs))
}
