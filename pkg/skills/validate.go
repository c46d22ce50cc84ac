package skills

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// Validate checks every document under dir and reports all malformed
// headers and duplicate identifiers at once, in scan order. It returns nil
// when dir would load cleanly. No registry is involved.
func Validate(ctx context.Context, dir string, opts ...Option) error {
	l, err := newLoader(opts...)
	if err != nil {
		return err
	}

	refs, err := l.discover(ctx, dir)
	if err != nil {
		return err
	}

	docs, errs, err := l.parseAll(ctx, refs)
	if err != nil {
		return err
	}

	var result *multierror.Error
	seen := make(map[string]*Skill, len(docs))

	for i, doc := range docs {
		if errs[i] != nil {
			result = multierror.Append(result, errs[i])
			continue
		}
		if first, exists := seen[doc.Name]; exists {
			result = multierror.Append(result, &DuplicateIdentifierError{
				Identifier: doc.Name,
				FirstPath:  first.Path,
				SecondPath: doc.Path,
			})
			continue
		}
		seen[doc.Name] = doc
	}

	return result.ErrorOrNil()
}

// Problems flattens an error returned by Validate into its parts
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		return merr.WrappedErrors()
	}
	return []error{err}
}
