package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// FileSource loads profiles or applications from files on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a new file-based source.
// The path can be either a single file or a directory. If it's a directory,
// all .yaml, .yml, .json, .jsonl and .ndjson files below it are loaded in
// lexical order; hidden files and directories are skipped.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

// Path returns the configured file or directory.
func (s *FileSource) Path() string {
	return s.path
}

// LoadProfiles loads all profiles from the configured path. A file may hold
// one profile or a list of profiles.
func (s *FileSource) LoadProfiles(ctx context.Context) (*ProfileSet, error) {
	profiles, rejected, err := loadEntities[credit.DecisionProfile](ctx, s, credit.EntityProfile, "id", "name")
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "loaded profiles from source",
		"path", s.path,
		"profile_count", len(profiles),
		"rejected", len(rejected),
	)
	return &ProfileSet{Profiles: profiles, Rejected: rejected}, nil
}

// LoadApplications loads all applications from the configured path: a JSON
// array or object, JSON lines, or a YAML list or mapping.
func (s *FileSource) LoadApplications(ctx context.Context) (*ApplicationSet, error) {
	apps, rejected, err := loadEntities[credit.Application](ctx, s, credit.EntityApplication, "application_id")
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "loaded applications from source",
		"path", s.path,
		"application_count", len(apps),
		"rejected", len(rejected),
	)
	return &ApplicationSet{Applications: apps, Rejected: rejected}, nil
}

// loadEntities decodes every entity of every file independently. Entities
// that fail to decode become rejections with their file and position.
//
// An unreadable single file is an error. In a directory, an unreadable file
// is skipped and reported as a rejection with index -1.
func loadEntities[E any](ctx context.Context, s *FileSource, kind string, idKeys ...string) ([]*E, []engine.Rejection, error) {
	paths, single, err := s.files()
	if err != nil {
		return nil, nil, err
	}

	items := []*E{}
	rejected := []engine.Rejection{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		entities, err := readEntities(path)
		if err != nil {
			if single {
				return nil, nil, err
			}
			s.logger.WarnContext(ctx, "failed to load file, skipping",
				"path", path,
				"error", err,
			)
			rejected = append(rejected, engine.Rejection{Kind: kind, Index: -1, Source: path, Reason: err.Error()})
			continue
		}

		for i, entity := range entities {
			item := new(E)
			if err := entity.decode(item); err != nil {
				rejected = append(rejected, engine.Rejection{
					Kind:   kind,
					Index:  i,
					ID:     entity.peekString(idKeys...),
					Source: path,
					Reason: "decode: " + err.Error(),
				})
				continue
			}
			items = append(items, item)
		}

		s.logger.DebugContext(ctx, "loaded file",
			"path", path,
			"kind", kind,
			"entity_count", len(entities),
		)
	}

	return items, rejected, nil
}

// files resolves the configured path into the files to load. single is
// true when the path names a file rather than a directory.
func (s *FileSource) files() (paths []string, single bool, err error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	if !info.IsDir() {
		if _, ok := formatOf(s.path); !ok {
			return nil, true, fmt.Errorf("unsupported file extension %q", filepath.Ext(s.path))
		}
		return []string{s.path}, true, nil
	}

	// WalkDir visits entries in lexical order
	err = filepath.WalkDir(s.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != s.path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if _, ok := formatOf(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return paths, false, nil
}

// readEntities reads a file and splits it into entities.
func readEntities(path string) ([]rawEntity, error) {
	f, ok := formatOf(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	entities, err := splitEntities(data, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %q: %w", path, err)
	}
	return entities, nil
}
