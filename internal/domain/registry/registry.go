package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// Registry maps each Family to its classifier. It is fixed at construction
// and safe for concurrent reads.
type Registry struct {
	models  map[Family]Classifier
	reasons map[Family]error
}

// New builds a registry from in-memory classifiers. Families absent from
// models are unavailable.
func New(models map[Family]Classifier) *Registry {
	r := &Registry{models: make(map[Family]Classifier), reasons: make(map[Family]error)}
	for _, f := range Families {
		if c, ok := models[f]; ok && c != nil {
			r.models[f] = c
			continue
		}
		r.reasons[f] = errors.New("no classifier supplied")
	}
	return r
}

// Load reads <dir>/{fastball,breaking,offspeed}.json. A missing or invalid
// artifact is logged and leaves that family unavailable; it is not retried.
func Load(ctx context.Context, dir string) *Registry {
	return LoadFS(ctx, os.DirFS(dir), dir)
}

// LoadFS is Load over an fs.FS. label names the source in logs.
func LoadFS(ctx context.Context, fsys fs.FS, label string) *Registry {
	log := logger.Named("registry")
	r := &Registry{models: make(map[Family]Classifier), reasons: make(map[Family]error)}

	for _, fam := range Families {
		c, err := loadArtifact(fsys, fam.artifact())
		if err != nil {
			r.reasons[fam] = err
			metrics.RecordModelLoad(fam.String(), "unavailable")
			log.Warn(ctx, "classifier unavailable",
				logger.String("family", fam.String()),
				logger.String("path", filepath.Join(label, fam.artifact())),
				logger.Error(err),
			)
			continue
		}
		r.models[fam] = c
		metrics.RecordModelLoad(fam.String(), "ok")
		log.Info(ctx, "classifier loaded", logger.String("family", fam.String()))
	}
	return r
}

func loadArtifact(fsys fs.FS, name string) (Classifier, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeLogistic(f)
}

// Get returns the family's classifier or an error wrapping ErrModelUnavailable.
func (r *Registry) Get(f Family) (Classifier, error) {
	if c, ok := r.models[f]; ok {
		return c, nil
	}
	reason := r.reasons[f]
	if reason == nil {
		reason = errors.New("unknown family")
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, f, reason)
}

// Available lists the families that have a classifier.
func (r *Registry) Available() []Family {
	var out []Family
	for _, f := range Families {
		if _, ok := r.models[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
