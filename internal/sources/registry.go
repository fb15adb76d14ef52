package sources

import (
	"fmt"
	"os"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

// Registry is the immutable set of sources for one process.
type Registry struct {
	sources []Source
	log     logger.Interface
}

// Load builds the registry from the given sources file, falling back to the
// built-in defaults when the path is empty or the file does not exist.
func Load(path string, log logger.Interface) (*Registry, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, loadErr := LoadFile(path)
			if loadErr != nil {
				return nil, fmt.Errorf("failed to load sources from %s: %w", path, loadErr)
			}
			log.Info("loaded sources from file", "path", path, "count", len(loaded))
			return newRegistry(loaded, log), nil
		}
		log.Warn("sources file not found, using built-in sources", "path", path)
	}

	return newRegistry(defaultSources(), log), nil
}

func newRegistry(list []Source, log logger.Interface) *Registry {
	for i := range list {
		list[i].applyDefaults()
	}
	return &Registry{sources: list, log: log}
}

// All returns every registered source in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// FindByID returns the source with the given ID, or nil.
func (r *Registry) FindByID(id string) *Source {
	for i := range r.sources {
		if r.sources[i].ID == id {
			src := r.sources[i]
			return &src
		}
	}
	return nil
}
