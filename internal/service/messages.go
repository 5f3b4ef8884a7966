package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"backoffice/internal/model"
	"backoffice/internal/policy"
	apperr "backoffice/pkg/errors"
)

const fallbackFailure = "Ocurrió un error inesperado, intente nuevamente"

var actionLabels = map[policy.Action]string{
	policy.ApproveAdmin:           "Aprobar por administración",
	policy.ApproveJefeProyecto:    "Aprobar por jefe de proyecto",
	policy.ApproveContabilidad:    "Aprobar por contabilidad",
	policy.Transfer:               "Transferir",
	policy.UploadOperationFile:    "Subir archivo de operación",
	policy.UploadRetentionReceipt: "Subir comprobante",
	policy.SoftDelete:             "Eliminar",
	policy.Restore:                "Restaurar",
}

func actionLabel(a policy.Action) string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

func confirmationPrompt(a policy.Action, o model.Order) string {
	ref := o.NumeroOrden
	if ref == "" {
		ref = fmt.Sprintf("#%d", o.ID)
	}
	switch a {
	case policy.ApproveAdmin, policy.ApproveJefeProyecto, policy.ApproveContabilidad:
		return fmt.Sprintf("¿Está seguro de aprobar la orden %s?", ref)
	case policy.Transfer:
		return fmt.Sprintf("¿Confirma la transferencia de la orden %s?", ref)
	case policy.UploadOperationFile:
		return fmt.Sprintf("¿Subir el archivo de operación de la orden %s?", ref)
	case policy.UploadRetentionReceipt:
		return fmt.Sprintf("¿Subir el comprobante de la orden %s?", ref)
	case policy.SoftDelete:
		return fmt.Sprintf("¿Está seguro de eliminar la orden %s?", ref)
	case policy.Restore:
		return fmt.Sprintf("¿Restaurar la orden %s?", ref)
	default:
		return fmt.Sprintf("¿Confirma la acción sobre la orden %s?", ref)
	}
}

func successMessage(a policy.Action, o model.Order) string {
	ref := o.NumeroOrden
	if ref == "" {
		ref = fmt.Sprintf("#%d", o.ID)
	}
	switch a {
	case policy.ApproveAdmin, policy.ApproveJefeProyecto, policy.ApproveContabilidad:
		return fmt.Sprintf("Orden %s aprobada", ref)
	case policy.Transfer:
		return fmt.Sprintf("Orden %s transferida", ref)
	case policy.UploadOperationFile:
		return "Archivo de operación subido"
	case policy.UploadRetentionReceipt:
		return "Comprobante subido"
	case policy.SoftDelete:
		return fmt.Sprintf("Orden %s eliminada", ref)
	case policy.Restore:
		return fmt.Sprintf("Orden %s restaurada", ref)
	default:
		return "Operación completada"
	}
}

// failureMessage is the server's message when there is one.
func failureMessage(err error) string {
	typed := apperr.As(err)
	if typed == nil || strings.TrimSpace(typed.Message()) == "" {
		return fallbackFailure
	}
	return typed.Message()
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
