package storage

import (
	"context"
	"net/url"
	"strings"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Locator resolves asset URLs against an ordered list of base URLs:
// the primary first, then each mirror. Fetch helpers try bases in
// order and surface the last failure when all of them are down.
type Locator struct {
	bases []string
}

// NewLocator builds a locator from a primary base URL and mirrors.
// Blank entries are dropped.
func NewLocator(primary string, mirrors ...string) (*Locator, error) {
	var bases []string
	for _, b := range append([]string{primary}, mirrors...) {
		b = strings.TrimRight(strings.TrimSpace(b), "/")
		if b == "" {
			continue
		}
		if _, err := url.Parse(b); err != nil {
			return nil, grerrors.New(grerrors.ErrCodeInvalidInput,
				"invalid asset base URL "+b, err)
		}
		bases = append(bases, b)
	}
	if len(bases) == 0 {
		return nil, grerrors.New(grerrors.ErrCodeInvalidInput, "no asset base URL configured", nil)
	}
	return &Locator{bases: bases}, nil
}

// Bases returns the resolution order.
func (l *Locator) Bases() []string { return l.bases }

// URLs returns the candidate URLs for one asset path, in try order.
func (l *Locator) URLs(path string) []string {
	path = strings.TrimLeft(path, "/")
	out := make([]string, len(l.bases))
	for i, b := range l.bases {
		out[i] = b + "/" + path
	}
	return out
}

// Try runs fetch against each candidate URL until one succeeds. The
// error from the last candidate is returned when all fail.
func (l *Locator) Try(ctx context.Context, path string, fetch func(ctx context.Context, url string) error) error {
	var lastErr error
	for _, u := range l.URLs(path) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fetch(ctx, u); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
