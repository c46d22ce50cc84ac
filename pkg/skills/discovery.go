package skills

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/pkg/errors"
)

// documentRef points at a document found during discovery.
type documentRef struct {
	path     string // document file
	dir      string // directory holding the document
	rel      string // slash-separated path relative to the source directory
	fallback string // identifier used when the header has no name
}

// discover lists the documents under root in directory-scan order. Flat
// files with a document extension are documents on their own; directories
// are skill directories holding a skill file or exactly one document.
func (l *loader) discover(ctx context.Context, root string) ([]documentRef, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skills source %s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", root)
	}

	log := logger.G(ctx).WithField("dir", root)
	refs := make([]documentRef, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if l.excluded(name) {
			log.WithField("entry", name).Debug("Skipping excluded entry")
			continue
		}

		entryPath := filepath.Join(root, name)

		// os.Stat follows symlinks so linked skill directories are discovered
		info, err := os.Stat(entryPath)
		if err != nil {
			log.WithError(err).WithField("entry", name).Debug("Skipping unreadable entry")
			continue
		}

		if !info.IsDir() {
			if !info.Mode().IsRegular() || !l.isDocument(name) {
				continue
			}
			refs = append(refs, documentRef{
				path:     entryPath,
				dir:      root,
				rel:      name,
				fallback: strings.TrimSuffix(name, filepath.Ext(name)),
			})
			continue
		}

		docName, err := l.skillDocument(entryPath, name)
		if err != nil {
			log.WithError(err).WithField("entry", name).Debug("Skipping skill directory")
			continue
		}
		refs = append(refs, documentRef{
			path:     filepath.Join(entryPath, docName),
			dir:      entryPath,
			rel:      name + "/" + docName,
			fallback: name,
		})
	}

	return refs, nil
}

// skillDocument picks the document inside a skill directory. The skill file
// wins; otherwise the directory must hold exactly one document.
func (l *loader) skillDocument(dir, dirName string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "failed to read skill directory")
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || l.excluded(dirName+"/"+name) {
			continue
		}

		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if name == l.skillFile {
			return name, nil
		}
		if l.isDocument(name) {
			candidates = append(candidates, name)
		}
	}

	switch len(candidates) {
	case 0:
		return "", errors.Errorf("no %s or document file found", l.skillFile)
	case 1:
		return candidates[0], nil
	default:
		return "", errors.Errorf("found %d documents but no %s", len(candidates), l.skillFile)
	}
}

func (l *loader) isDocument(name string) bool {
	return slices.Contains(l.extensions, strings.ToLower(filepath.Ext(name)))
}

func (l *loader) excluded(rel string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
