package view

import (
	"context"
	"fmt"

	"backoffice/internal/model"
	"backoffice/internal/policy"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type key struct {
	role   string
	family model.Family
}

// Registry owns one OrderView per (role, family).
type Registry struct {
	views map[key]*OrderView
	order []*OrderView
}

func NewRegistry(scopes []policy.Scope, families []model.Family, opts Options) *Registry {
	r := &Registry{views: make(map[key]*OrderView, len(scopes)*len(families))}
	for _, s := range scopes {
		for _, f := range families {
			v := New(s, f, opts)
			r.views[key{role: s.Role, family: f}] = v
			r.order = append(r.order, v)
		}
	}
	return r
}

func (r *Registry) View(role string, family model.Family) (*OrderView, bool) {
	v, ok := r.views[key{role: role, family: family}]
	return v, ok
}

func (r *Registry) Views() []*OrderView {
	return append([]*OrderView(nil), r.order...)
}

// Patch applies o to every view of the family.
func (r *Registry) Patch(family model.Family, o model.Order) {
	for _, v := range r.order {
		if v.family == family {
			v.Patch(o)
		}
	}
}

// Open opens every view concurrently. Load failures are fail-soft and do not
// fail the group.
func (r *Registry) Open(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range r.order {
		g.Go(func() error {
			if err := v.Open(gctx); err != nil {
				return fmt.Errorf("open %s/%s view: %w", v.scope.Role, v.family, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close closes every view and combines their errors.
func (r *Registry) Close() error {
	var err error
	for _, v := range r.order {
		if cerr := v.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s/%s view: %w", v.scope.Role, v.family, cerr))
		}
	}
	return err
}
