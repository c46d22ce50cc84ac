package skills

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSkillFileName is the document picked inside a skill directory
	DefaultSkillFileName = "SKILL.md"
)

// DefaultExtensions are the file extensions treated as documents
var DefaultExtensions = []string{".md", ".markdown"}

// loader holds the discovery and parsing settings shared by Registry and
// Validate.
type loader struct {
	extensions  []string
	exclude     []string
	allowed     []string
	allowlist   []glob.Glob
	skillFile   string
	concurrency int
}

// Option is a function that configures a loader
type Option func(*loader) error

// WithExtensions sets the file extensions recognised as documents
func WithExtensions(exts ...string) Option {
	return func(l *loader) error {
		if len(exts) == 0 {
			return errors.New("at least one document extension must be specified")
		}
		l.extensions = make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			l.extensions = append(l.extensions, ext)
		}
		return nil
	}
}

// WithExclude skips entries whose slash-separated path relative to the
// source directory matches one of the doublestar patterns
func WithExclude(patterns ...string) Option {
	return func(l *loader) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("invalid exclude pattern '%s'", pattern)
			}
		}
		l.exclude = append(l.exclude, patterns...)
		return nil
	}
}

// WithAllowlist keeps only skills whose identifier matches one of the glob
// patterns. An empty allowlist keeps every skill.
func WithAllowlist(patterns ...string) Option {
	return func(l *loader) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return errors.Wrapf(err, "invalid allowlist pattern '%s'", pattern)
			}
			l.allowed = append(l.allowed, pattern)
			l.allowlist = append(l.allowlist, g)
		}
		return nil
	}
}

// WithSkillFileName sets the document name looked up inside skill directories
func WithSkillFileName(name string) Option {
	return func(l *loader) error {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return errors.Errorf("invalid skill file name '%s'", name)
		}
		l.skillFile = name
		return nil
	}
}

// WithConcurrency bounds the number of documents read in parallel
func WithConcurrency(n int) Option {
	return func(l *loader) error {
		if n < 1 {
			return errors.Errorf("concurrency must be at least 1, got %d", n)
		}
		l.concurrency = n
		return nil
	}
}

func newLoader(opts ...Option) (*loader, error) {
	l := &loader{
		extensions:  DefaultExtensions,
		skillFile:   DefaultSkillFileName,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// load discovers, parses and indexes root into a new snapshot.
func (l *loader) load(ctx context.Context, root string) (*Snapshot, error) {
	var snap *Snapshot

	err := telemetry.WithSpan(ctx, "skills.load", func(ctx context.Context) error {
		refs, err := l.discover(ctx, root)
		if err != nil {
			return err
		}

		docs, errs, err := l.parseAll(ctx, refs)
		if err != nil {
			return err
		}
		for _, parseErr := range errs {
			if parseErr != nil {
				return parseErr
			}
		}

		snap, err = buildSnapshot(root, docs, l.allowlist)
		if err != nil {
			return err
		}

		telemetry.SetAttributes(ctx,
			attribute.Int("skills.count", snap.Len()),
			attribute.String("skills.generation", snap.ID()),
		)
		return nil
	}, attribute.String("skills.dir", root))

	return snap, err
}

// parseAll reads and parses the documents concurrently. Results and parse
// errors are indexed like refs so callers see them in scan order. The
// returned error is only set when the context is cancelled or a file cannot
// be read.
func (l *loader) parseAll(ctx context.Context, refs []documentRef) ([]*Skill, []error, error) {
	docs := make([]*Skill, len(refs))
	errs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			content, err := os.ReadFile(ref.path)
			if err != nil {
				return errors.Wrapf(err, "failed to read skill file %s", ref.path)
			}

			skill, err := ParseDocument(ref.path, ref.fallback, content)
			if err != nil {
				errs[i] = err
				return nil
			}
			skill.Directory = ref.dir
			docs[i] = skill

			logger.G(ctx).WithField("skill", skill.Name).WithField("path", ref.rel).Debug("Parsed skill document")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return docs, errs, nil
}
