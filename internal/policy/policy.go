// Package policy decides which transitions an order row allows.
package policy

import (
	"fmt"

	"backoffice/internal/model"
)

// Action names a gated transition.
type Action string

const (
	ApproveAdmin           Action = "approve_admin"
	ApproveJefeProyecto    Action = "approve_jefe_proyecto"
	ApproveContabilidad    Action = "approve_contabilidad"
	Transfer               Action = "transfer"
	UploadOperationFile    Action = "upload_operation_file"
	UploadRetentionReceipt Action = "upload_retention_receipt"
	SoftDelete             Action = "soft_delete"
	Restore                Action = "restore"
)

// Actions lists every known action.
var Actions = []Action{
	ApproveAdmin, ApproveJefeProyecto, ApproveContabilidad,
	Transfer, UploadOperationFile, UploadRetentionReceipt,
	SoftDelete, Restore,
}

// MinApprovals is the number of strictly approved flags that unlock payment.
const MinApprovals = 2

func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// IsApproval reports whether a flips one of the three authorization flags.
func (a Action) IsApproval() bool {
	return a == ApproveAdmin || a == ApproveJefeProyecto || a == ApproveContabilidad
}

// FlagFor returns the flag an approval action sets.
func FlagFor(o model.Order, a Action) (model.Flag, bool) {
	switch a {
	case ApproveAdmin:
		return o.AutoAdministrador, true
	case ApproveJefeProyecto:
		return o.JefeProyecto, true
	case ApproveContabilidad:
		return o.AutoContabilidad, true
	default:
		return model.FlagNotApplicable, false
	}
}

// CanTransition reports whether action is enabled for o.
func CanTransition(o model.Order, action Action) bool {
	if o.IsDeleted() {
		return action == Restore
	}

	switch action {
	case ApproveAdmin, ApproveJefeProyecto, ApproveContabilidad:
		flag, _ := FlagFor(o, action)
		return !flag.Approved()
	case Transfer:
		return o.PaymentIs(model.ProcedePagoPagar) && o.ApprovalCount() >= MinApprovals
	case UploadOperationFile:
		return o.ApprovalCount() >= MinApprovals && !o.HasOperationFile()
	case UploadRetentionReceipt:
		return o.ID > 0
	case SoftDelete:
		return true
	default:
		return false
	}
}
