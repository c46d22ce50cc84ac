package skills

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/pkg/errors"
)

// Registry is a read-only, validated view over a directory of skills.
// Loads build a complete Snapshot first and publish it with a single atomic
// store; a failed load leaves the previous snapshot in place.
type Registry struct {
	loader  *loader
	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex
}

// NewRegistry creates an unloaded registry
func NewRegistry(opts ...Option) (*Registry, error) {
	l, err := newLoader(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply registry option")
	}
	return &Registry{loader: l}, nil
}

// Load replaces the registry contents with the skills found in dir. It
// fails with a MalformedHeaderError or DuplicateIdentifierError without
// touching the current contents.
func (r *Registry) Load(ctx context.Context, dir string) error {
	_, _, err := r.load(ctx, dir)
	return err
}

// Reload loads the directory of the current snapshot again
func (r *Registry) Reload(ctx context.Context) error {
	_, _, err := r.ReloadChanges(ctx)
	return err
}

// ReloadChanges reloads like Reload. It returns the snapshot it installed
// and the changes from the snapshot it replaced, both taken from the same
// swap.
func (r *Registry) ReloadChanges(ctx context.Context) (*Snapshot, Changes, error) {
	source := r.Source()
	if source == "" {
		return nil, Changes{}, errors.New("registry has not been loaded")
	}
	prev, next, err := r.load(ctx, source)
	if err != nil {
		return nil, Changes{}, err
	}
	return next, Diff(prev, next), nil
}

// load serialises loads so the swap order matches the call order, and
// returns the snapshots on both sides of the swap.
func (r *Registry) load(ctx context.Context, dir string) (*Snapshot, *Snapshot, error) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	next, err := r.loader.load(ctx, dir)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("dir", dir).Debug("Failed to load skills")
		return nil, nil, err
	}

	prev := r.current.Swap(next)

	logger.G(ctx).WithFields(map[string]interface{}{
		"dir":        dir,
		"count":      next.Len(),
		"generation": next.ID(),
	}).Info("Loaded skills")

	return prev, next, nil
}

// Get returns a copy of the skill with the given identifier or a
// NotFoundError
func (r *Registry) Get(name string) (*Skill, error) {
	skill, ok := r.current.Load().Get(name)
	if !ok {
		return nil, &NotFoundError{Identifier: name}
	}
	return skill.clone(), nil
}

// List yields a copy of every loaded skill in directory-scan order. Each
// range over the sequence reads the snapshot current at that moment.
func (r *Registry) List() iter.Seq[*Skill] {
	return func(yield func(*Skill) bool) {
		for skill := range r.current.Load().All() {
			if !yield(skill.clone()) {
				return
			}
		}
	}
}

// Snapshot returns the current snapshot, nil when unloaded
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Loaded reports whether a load has succeeded
func (r *Registry) Loaded() bool {
	return r.current.Load() != nil
}

// Len returns the number of loaded skills
func (r *Registry) Len() int {
	return r.current.Load().Len()
}

// Names returns the loaded identifiers in directory-scan order
func (r *Registry) Names() []string {
	return r.current.Load().Names()
}

// Source returns the directory of the current snapshot
func (r *Registry) Source() string {
	return r.current.Load().Source()
}
