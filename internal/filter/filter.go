// Package filter derives the visible rows of an order page from its search controls.
package filter

import (
	"strings"

	"backoffice/internal/model"
)

// Sentinel values of the page selects.
const (
	All             = "TODOS"
	ApprovalOK      = "APROBADO"
	ApprovalPending = "PENDIENTE"
)

// Criteria mirrors the search controls of an order page.
type Criteria struct {
	SearchQuery string
	Estado      string
	Approval    string
	// Date is yyyy-MM-dd; compared as a string.
	Date           string
	IncludeDeleted bool
}

func (c Criteria) matchesSearch(o model.Order) bool {
	q := strings.ToLower(strings.TrimSpace(c.SearchQuery))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.NumeroOrden), q) ||
		strings.Contains(strings.ToLower(o.NombreProveedor), q)
}

func (c Criteria) matchesEstado(o model.Order) bool {
	if c.Estado == "" || c.Estado == All {
		return true
	}
	return o.Estado == c.Estado
}

func (c Criteria) matchesApproval(o model.Order, flagOf func(model.Order) model.Flag) bool {
	if flagOf == nil {
		return true
	}
	switch c.Approval {
	case ApprovalOK:
		return flagOf(o).Approved()
	case ApprovalPending:
		return !flagOf(o).Approved()
	default:
		return true
	}
}

func (c Criteria) matchesDate(o model.Order) bool {
	d := strings.TrimSpace(c.Date)
	if d == "" {
		return true
	}
	return o.FechaOrden.String() == d
}

// Match reports whether o passes every criterion.
func (c Criteria) Match(o model.Order, flagOf func(model.Order) model.Flag) bool {
	if o.IsDeleted() && !c.IncludeDeleted {
		return false
	}
	return c.matchesSearch(o) && c.matchesEstado(o) && c.matchesApproval(o, flagOf) && c.matchesDate(o)
}

// Apply keeps the orders matching c, preserving their order.
func Apply(orders []model.Order, c Criteria, flagOf func(model.Order) model.Flag) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if c.Match(o, flagOf) {
			out = append(out, o)
		}
	}
	return out
}
