package policy

import (
	"fmt"

	"backoffice/internal/model"
)

// Role names as carried in the JWT "role" claim.
const (
	RoleJefeProyecto = "jefe_proyecto"
	RoleGerencia     = "gerencia"
	RoleContabilidad = "contabilidad"
)

// Scope is what one role page exposes.
type Scope struct {
	Role string
	// Path is the route segment under /api.
	Path    string
	Actions []Action
	// ApprovalFlag is the flag the page's approval filter reads.
	ApprovalFlag func(model.Order) model.Flag
}

var (
	JefeProyectoScope = Scope{
		Role:         RoleJefeProyecto,
		Path:         "jefe-proyecto",
		Actions:      []Action{ApproveJefeProyecto},
		ApprovalFlag: func(o model.Order) model.Flag { return o.JefeProyecto },
	}
	GerenciaScope = Scope{
		Role:         RoleGerencia,
		Path:         "gerencia",
		Actions:      []Action{ApproveAdmin, SoftDelete, Restore},
		ApprovalFlag: func(o model.Order) model.Flag { return o.AutoAdministrador },
	}
	ContabilidadScope = Scope{
		Role:         RoleContabilidad,
		Path:         "contabilidad",
		Actions:      []Action{ApproveContabilidad, Transfer, UploadOperationFile, UploadRetentionReceipt},
		ApprovalFlag: func(o model.Order) model.Flag { return o.AutoContabilidad },
	}
)

// Scopes lists every role page.
var Scopes = []Scope{JefeProyectoScope, GerenciaScope, ContabilidadScope}

func ScopeForRole(role string) (Scope, error) {
	for _, s := range Scopes {
		if s.Role == role {
			return s, nil
		}
	}
	return Scope{}, fmt.Errorf("unknown role %q", role)
}

// Allows reports whether the scope exposes action at all.
func (s Scope) Allows(action Action) bool {
	for _, a := range s.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// ExposesDeleted reports whether the page can show deleted rows (only pages with restore can).
func (s Scope) ExposesDeleted() bool {
	return s.Allows(Restore)
}

// ActionState is one button of a row.
type ActionState struct {
	Action  Action `json:"action"`
	Enabled bool   `json:"enabled"`
}

// Available returns the scope's actions for o with their enabled state.
func Available(s Scope, o model.Order) []ActionState {
	out := make([]ActionState, 0, len(s.Actions))
	for _, a := range s.Actions {
		out = append(out, ActionState{Action: a, Enabled: CanTransition(o, a)})
	}
	return out
}
