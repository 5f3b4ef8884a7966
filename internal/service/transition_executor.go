package service

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/attachment"
	"backoffice/internal/model"
	"backoffice/internal/orderapi"
	"backoffice/internal/policy"
	apperr "backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

// --- Collaborators ---

// OrderGateway is the slice of the Order API the executor drives.
type OrderGateway interface {
	Approve(ctx context.Context, family model.Family, id int64, approval orderapi.Approval) (*model.Order, error)
	Transfer(ctx context.Context, family model.Family, id int64) (*model.Order, error)
	Delete(ctx context.Context, family model.Family, id int64) error
	Restore(ctx context.Context, family model.Family, id int64) (*model.Order, error)
	UploadFile(ctx context.Context, family model.Family, id int64, file attachment.File) (*orderapi.UploadResult, error)
	UploadRetentionReceipt(ctx context.Context, family model.Family, id int64, file attachment.File, nroSerie string) (*orderapi.UploadResult, error)
}

// OrderCache is the cached list the gate reads.
type OrderCache interface {
	Get(id int64) (model.Order, bool)
}

// OrderPatcher applies a successful transition to the cached lists.
type OrderPatcher interface {
	Patch(family model.Family, o model.Order)
}

type Notifier interface {
	Notify(ctx context.Context, t model.Toast)
}

type TransitionMetrics interface {
	IncTransition(family, action, outcome string)
}

// --- DTOs ---

type Actor struct {
	UserID string
	Role   string
}

type TransitionRequest struct {
	Actor     Actor
	Scope     policy.Scope
	Family    model.Family
	OrderID   int64
	Action    policy.Action
	Confirmed bool

	// Files is the operation evidence for UploadOperationFile.
	Files []attachment.File
	// Receipt is the withholding receipt for UploadRetentionReceipt.
	Receipt *attachment.RetentionReceipt
}

type TransitionResult struct {
	Order   model.Order `json:"order"`
	Message string      `json:"message"`
}

// --- Interface ---

type TransitionExecutor interface {
	Execute(ctx context.Context, cache OrderCache, req TransitionRequest) (TransitionResult, error)
}

type ExecutorDeps struct {
	Gateway  OrderGateway
	Patcher  OrderPatcher
	Merger   attachment.Merger
	Notifier Notifier
	Logs     TransitionLogService
	Metrics  TransitionMetrics
	Log      *logger.Logger
	Now      func() time.Time
}

type transitionExecutor struct {
	deps ExecutorDeps
}

func NewTransitionExecutor(deps ExecutorDeps) TransitionExecutor {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &transitionExecutor{deps: deps}
}

// --- Implementation ---

func (e *transitionExecutor) Execute(ctx context.Context, cache OrderCache, req TransitionRequest) (TransitionResult, error) {
	ctx = e.deps.Log.WithOrder(ctx, string(req.Family), req.OrderID)
	ctx = e.deps.Log.WithField(ctx, "action", string(req.Action))

	if !req.Scope.Allows(req.Action) {
		return TransitionResult{}, apperr.New(apperr.CodeForbidden,
			fmt.Sprintf("la acción %s no está disponible para %s", req.Action, req.Scope.Role))
	}

	order, ok := cache.Get(req.OrderID)
	if !ok {
		return TransitionResult{}, apperr.New(apperr.CodeNotFound, fmt.Sprintf("orden %d no encontrada", req.OrderID))
	}

	if !policy.CanTransition(order, req.Action) {
		err := apperr.New(apperr.CodeStateConflict, "la orden no permite esta acción en su estado actual")
		e.finish(ctx, req, order, model.OutcomeRejected, err.Message())
		return TransitionResult{}, err
	}

	if err := validateInputs(req); err != nil {
		e.finish(ctx, req, order, model.OutcomeRejected, failureMessage(err))
		return TransitionResult{}, err
	}

	if !req.Confirmed {
		prompt := confirmationPrompt(req.Action, order)
		return TransitionResult{}, apperr.New(apperr.CodeConfirmationRequired, prompt).
			WithDetails(map[string]any{"prompt": prompt, "action": req.Action})
	}

	e.notify(ctx, req, model.ToastLoading, actionLabel(req.Action)+"...", "")

	updated, err := e.run(ctx, req, order)
	if err != nil {
		msg := failureMessage(err)
		e.deps.Log.Error(ctx, "transition failed", err)
		e.notify(ctx, req, model.ToastError, "No se pudo "+lowerFirst(actionLabel(req.Action)), msg)
		e.finish(ctx, req, order, model.OutcomeFailed, msg)
		return TransitionResult{}, err
	}

	if e.deps.Patcher != nil {
		e.deps.Patcher.Patch(req.Family, updated)
	}
	msg := successMessage(req.Action, updated)
	e.notify(ctx, req, model.ToastSuccess, msg, "")
	e.finish(ctx, req, updated, model.OutcomeSucceeded, "")
	e.deps.Log.Info(ctx, "transition succeeded")

	return TransitionResult{Order: updated, Message: msg}, nil
}

func validateInputs(req TransitionRequest) error {
	switch req.Action {
	case policy.UploadRetentionReceipt:
		if req.Receipt == nil {
			return attachment.RetentionReceipt{}.Validate()
		}
		return req.Receipt.Validate()
	case policy.UploadOperationFile:
		return attachment.OperationFiles(req.Files).Validate()
	default:
		return nil
	}
}

// run performs the remote call and returns the order as it should now be cached.
func (e *transitionExecutor) run(ctx context.Context, req TransitionRequest, order model.Order) (model.Order, error) {
	gw := e.deps.Gateway
	family, id := req.Family, req.OrderID

	switch req.Action {
	case policy.ApproveAdmin, policy.ApproveJefeProyecto, policy.ApproveContabilidad:
		record, err := gw.Approve(ctx, family, id, approvalFor(req.Action))
		if err != nil {
			return model.Order{}, err
		}
		return orLocal(record, order, func(o *model.Order) { setApproved(o, req.Action) }), nil

	case policy.Transfer:
		record, err := gw.Transfer(ctx, family, id)
		if err != nil {
			return model.Order{}, err
		}
		return orLocal(record, order, func(o *model.Order) {
			o.ProcedePago = model.StringPtr(model.ProcedePagoTransferir)
			o.Estado = model.EstadoCompletada
		}), nil

	case policy.UploadOperationFile:
		file, err := e.mergeFiles(ctx, req.Files)
		if err != nil {
			return model.Order{}, err
		}
		res, err := gw.UploadFile(ctx, family, id, file)
		if err != nil {
			return model.Order{}, err
		}
		return orLocal(res.Order, order, func(o *model.Order) {
			if res.URL != "" {
				o.URL = model.StringPtr(res.URL)
			}
		}), nil

	case policy.UploadRetentionReceipt:
		nroSerie := req.Receipt.NroSerie
		res, err := gw.UploadRetentionReceipt(ctx, family, id, *req.Receipt.File, nroSerie)
		if err != nil {
			return model.Order{}, err
		}
		return orLocal(res.Order, order, func(o *model.Order) {
			if res.URL != "" {
				o.URLComprobanteRetencion = model.StringPtr(res.URL)
			}
			o.NroSerie = model.StringPtr(nroSerie)
		}), nil

	case policy.SoftDelete:
		if err := gw.Delete(ctx, family, id); err != nil {
			return model.Order{}, err
		}
		now := e.deps.Now().UTC()
		order.DeletedAt = &now
		return order, nil

	case policy.Restore:
		record, err := gw.Restore(ctx, family, id)
		if err != nil {
			return model.Order{}, err
		}
		return orLocal(record, order, func(o *model.Order) { o.DeletedAt = nil }), nil

	default:
		return model.Order{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("acción desconocida %q", req.Action))
	}
}

func (e *transitionExecutor) mergeFiles(ctx context.Context, files []attachment.File) (attachment.File, error) {
	if len(files) == 1 {
		return files[0], nil
	}
	if e.deps.Merger == nil {
		return attachment.File{}, apperr.New(apperr.CodeInternal, "no hay un combinador de archivos configurado")
	}
	merged, err := e.deps.Merger.Merge(ctx, files)
	if err != nil {
		return attachment.File{}, apperr.Wrap(apperr.CodeValidation, err, "no se pudieron combinar los archivos en un PDF")
	}
	return merged, nil
}

// orLocal prefers the server's record and otherwise applies the local rule to the cached row.
func orLocal(record *model.Order, cached model.Order, rule func(*model.Order)) model.Order {
	if record != nil {
		return record.Clone()
	}
	rule(&cached)
	return cached
}

func setApproved(o *model.Order, a policy.Action) {
	switch a {
	case policy.ApproveAdmin:
		o.AutoAdministrador = model.FlagApproved
	case policy.ApproveJefeProyecto:
		o.JefeProyecto = model.FlagApproved
	case policy.ApproveContabilidad:
		o.AutoContabilidad = model.FlagApproved
	}
}

func approvalFor(a policy.Action) orderapi.Approval {
	switch a {
	case policy.ApproveJefeProyecto:
		return orderapi.ApprovalJefeProyecto
	case policy.ApproveContabilidad:
		return orderapi.ApprovalContabilidad
	default:
		return orderapi.ApprovalAdministracion
	}
}

func (e *transitionExecutor) notify(ctx context.Context, req TransitionRequest, kind, title, message string) {
	if e.deps.Notifier == nil {
		return
	}
	e.deps.Notifier.Notify(ctx, model.Toast{
		Kind:    kind,
		Title:   title,
		Message: message,
		Family:  req.Family,
		OrderID: req.OrderID,
		Role:    req.Actor.Role,
		UserID:  req.Actor.UserID,
	})
}

// finish writes the log row and the metric. A failed log write never fails the transition.
func (e *transitionExecutor) finish(ctx context.Context, req TransitionRequest, order model.Order, outcome, message string) {
	if e.deps.Metrics != nil {
		e.deps.Metrics.IncTransition(string(req.Family), string(req.Action), outcome)
	}
	if e.deps.Logs == nil {
		return
	}
	entry := &model.TransitionLog{
		UserID:        req.Actor.UserID,
		Role:          req.Actor.Role,
		Family:        string(req.Family),
		OrderID:       req.OrderID,
		NumeroOrden:   order.NumeroOrden,
		Action:        string(req.Action),
		Outcome:       outcome,
		ServerMessage: message,
	}
	if err := e.deps.Logs.Record(ctx, entry); err != nil {
		e.deps.Log.Error(ctx, "failed to record transition", err)
	}
}
