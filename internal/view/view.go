// Package view keeps the in-memory order list of every role page.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"backoffice/internal/debounce"
	"backoffice/internal/filter"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/push"
	"backoffice/pkg/logger"
)

// Source fetches the full order collection of a family.
type Source interface {
	List(ctx context.Context, family model.Family) ([]model.Order, error)
}

type Notifier interface {
	Notify(ctx context.Context, t model.Toast)
}

type ReloadObserver interface {
	IncReload(family string, err error)
}

// Options are the collaborators and timings shared by every view.
type Options struct {
	Source         Source
	Broker         push.Subscriber
	Notifier       Notifier
	Metrics        ReloadObserver
	Log            *logger.Logger
	PollInterval   time.Duration
	ReloadDebounce time.Duration
}

// Row is one order together with the enabled state of the page's actions.
type Row struct {
	model.Order
	Actions []policy.ActionState `json:"actions"`
}

var ErrNotOpen = errors.New("view is not open")

// OrderView is the cached order list of one (role, family) page.
type OrderView struct {
	scope  policy.Scope
	family model.Family
	opts   Options

	mu       sync.RWMutex
	orders   []model.Order
	loadedAt time.Time

	lifeMu      sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	debouncer   *debounce.Debouncer
	pollDone    chan struct{}
}

func New(scope policy.Scope, family model.Family, opts Options) *OrderView {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &OrderView{scope: scope, family: family, opts: opts}
}

func (v *OrderView) Scope() policy.Scope  { return v.scope }
func (v *OrderView) Family() model.Family { return v.family }

// Load fetches the list, replacing the cache. On failure the cache is cleared
// and an error toast is sent to the page.
func (v *OrderView) Load(ctx context.Context) error {
	err := v.fetch(ctx)
	if err == nil {
		return nil
	}
	v.replace(nil)
	v.opts.Log.Error(v.logContext(ctx), "failed to load orders", err)
	if v.opts.Notifier != nil {
		v.opts.Notifier.Notify(ctx, model.Toast{
			Kind:    model.ToastError,
			Title:   "No se pudieron cargar las órdenes",
			Message: err.Error(),
			Family:  v.family,
			Role:    v.scope.Role,
		})
	}
	return err
}

// Reload refetches the list and keeps the previous one when the fetch fails.
func (v *OrderView) Reload(ctx context.Context) error {
	return v.fetch(ctx)
}

func (v *OrderView) fetch(ctx context.Context) error {
	if v.opts.Source == nil {
		return errors.New("view has no source")
	}
	orders, err := v.opts.Source.List(ctx, v.family)
	if v.opts.Metrics != nil {
		v.opts.Metrics.IncReload(string(v.family), err)
	}
	if err != nil {
		return err
	}
	v.replace(orders)
	return nil
}

func (v *OrderView) replace(orders []model.Order) {
	cp := make([]model.Order, len(orders))
	for i, o := range orders {
		cp[i] = o.Clone()
	}
	v.mu.Lock()
	v.orders = cp
	v.loadedAt = time.Now()
	v.mu.Unlock()
}

// Get returns a copy of the cached order with id.
func (v *OrderView) Get(id int64) (model.Order, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, o := range v.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return model.Order{}, false
}

// Patch replaces the cached order with the same id, appending it when absent.
func (v *OrderView) Patch(o model.Order) {
	o = o.Clone()
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.orders {
		if v.orders[i].ID == o.ID {
			v.orders[i] = o
			return
		}
	}
	v.orders = append(v.orders, o)
}

// Orders returns a copy of the whole cache.
func (v *OrderView) Orders() []model.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Order, len(v.orders))
	for i, o := range v.orders {
		out[i] = o.Clone()
	}
	return out
}

// Rows returns the filtered rows with their action states. Deleted rows are
// only ever visible on pages that can restore them.
func (v *OrderView) Rows(c filter.Criteria) []Row {
	if !v.scope.ExposesDeleted() {
		c.IncludeDeleted = false
	}
	visible := filter.Apply(v.Orders(), c, v.scope.ApprovalFlag)
	rows := make([]Row, 0, len(visible))
	for _, o := range visible {
		rows = append(rows, Row{Order: o, Actions: policy.Available(v.scope, o)})
	}
	return rows
}

// LoadedAt is when the cache was last replaced.
func (v *OrderView) LoadedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadedAt
}

// Open loads the list, subscribes to the family's push event and starts polling.
func (v *OrderView) Open(ctx context.Context) error {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()
	if v.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	v.cancel = cancel

	v.debouncer = debounce.New(v.opts.ReloadDebounce, func() {
		if runCtx.Err() != nil {
			return
		}
		_ = v.Load(runCtx)
	})
	if v.opts.Broker != nil {
		v.unsubscribe = v.opts.Broker.Subscribe(v.family.UpdateEvent(), func(push.Event) {
			v.debouncer.Trigger()
		})
	}
	if v.opts.PollInterval > 0 {
		v.pollDone = make(chan struct{})
		go v.poll(runCtx, v.opts.PollInterval, v.pollDone)
	}

	_ = v.Load(ctx)
	return nil
}

func (v *OrderView) poll(ctx context.Context, every time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.Reload(ctx); err != nil && ctx.Err() == nil {
				v.opts.Log.Error(v.logContext(ctx), "poll reload failed", err)
			}
		}
	}
}

// Close releases the subscription and stops the timers.
func (v *OrderView) Close() error {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()
	if v.cancel == nil {
		return ErrNotOpen
	}
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	v.debouncer.Stop()
	v.cancel()
	if v.pollDone != nil {
		<-v.pollDone
		v.pollDone = nil
	}
	v.cancel = nil
	return nil
}

func (v *OrderView) logContext(ctx context.Context) context.Context {
	return v.opts.Log.WithFields(ctx, map[string]any{
		"role":   v.scope.Role,
		"family": string(v.family),
	})
}
