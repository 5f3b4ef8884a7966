package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Family selects one of the two order resource families of the Order API.
type Family string

const (
	FamilyCompra   Family = "compra"
	FamilyServicio Family = "servicio"
)

// Families lists every order family in display order.
var Families = []Family{FamilyCompra, FamilyServicio}

func ParseFamily(s string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(s))) {
	case FamilyCompra:
		return FamilyCompra, nil
	case FamilyServicio:
		return FamilyServicio, nil
	default:
		return "", fmt.Errorf("unknown order family %q", s)
	}
}

// Resource is the Order API collection path segment.
func (f Family) Resource() string {
	return "ordenes-" + string(f)
}

// UpdateEvent is the push event name announcing a change in this family.
func (f Family) UpdateEvent() string {
	if f == FamilyServicio {
		return EventOrdenServicioUpdated
	}
	return EventOrdenCompraUpdated
}

// ReceiptLabel names the withholding receipt slot for this family.
func (f Family) ReceiptLabel() string {
	if f == FamilyServicio {
		return "Comprobante de detracción"
	}
	return "Comprobante de retención"
}

// Push event names
const (
	EventOrdenCompraUpdated   = "ordenCompraUpdated"
	EventOrdenServicioUpdated = "ordenServicioUpdated"
)

// Currency enum constants
const (
	MonedaSoles   = "SOLES"
	MonedaDolares = "DOLARES"
)

// Estado enum constants
const (
	EstadoPendiente  = "PENDIENTE"
	EstadoAprobada   = "APROBADA"
	EstadoCompletada = "COMPLETADA"
	EstadoCancelada  = "CANCELADA"
	EstadoFirmada    = "FIRMADA"
)

// ProcedePago enum constants
const (
	ProcedePagoTransferir = "TRANSFERIR"
	ProcedePagoPagar      = "PAGAR"
)

// TieneAnticipo enum constants
const (
	AnticipoSi = "SI"
	AnticipoNo = "NO"
)

// Order is one purchase or service order as served by the Order API.
type Order struct {
	ID              int64           `json:"id"`
	NumeroOrden     string          `json:"numero_orden"`
	FechaOrden      Date            `json:"fecha_orden"`
	NombreProveedor string          `json:"nombre_proveedor"`
	RucProveedor    string          `json:"ruc_proveedor"`
	Moneda          string          `json:"moneda"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IGV             decimal.Decimal `json:"igv"`
	Total           decimal.Decimal `json:"total"`
	Estado          string          `json:"estado"`

	AutoAdministrador Flag `json:"auto_administrador"`
	JefeProyecto      Flag `json:"jefe_proyecto"`
	AutoContabilidad  Flag `json:"auto_contabilidad"`

	ProcedePago *string `json:"procede_pago"`

	// Purchase orders carry retención, service orders detracción.
	Retencion       *string          `json:"retencion,omitempty"`
	ValorRetencion  *decimal.Decimal `json:"valor_retencion,omitempty"`
	Detraccion      *string          `json:"detraccion,omitempty"`
	ValorDetraccion *decimal.Decimal `json:"valor_detraccion,omitempty"`
	TieneAnticipo   string           `json:"tiene_anticipo"`

	URL                     *string `json:"url"`
	URLCotizacion           *string `json:"url_cotizacion"`
	URLFactura              *string `json:"url_factura"`
	URLComprobanteRetencion *string `json:"url_comprobante_retencion"`
	NroSerie                *string `json:"nro_serie"`

	DeletedAt *time.Time `json:"deleted_at"`
}

func (o Order) IsDeleted() bool {
	return o.DeletedAt != nil
}

// ApprovalCount is the number of flags strictly approved.
func (o Order) ApprovalCount() int {
	n := 0
	for _, f := range []Flag{o.AutoAdministrador, o.JefeProyecto, o.AutoContabilidad} {
		if f.Approved() {
			n++
		}
	}
	return n
}

// PaymentIs reports whether procede_pago equals v.
func (o Order) PaymentIs(v string) bool {
	return o.ProcedePago != nil && *o.ProcedePago == v
}

// HasOperationFile reports whether the operation evidence slot is filled.
func (o Order) HasOperationFile() bool {
	return o.URL != nil && strings.TrimSpace(*o.URL) != ""
}

// Clone returns a copy that shares no pointers with o.
func (o Order) Clone() Order {
	c := o
	c.ProcedePago = cloneString(o.ProcedePago)
	c.Retencion = cloneString(o.Retencion)
	c.Detraccion = cloneString(o.Detraccion)
	c.URL = cloneString(o.URL)
	c.URLCotizacion = cloneString(o.URLCotizacion)
	c.URLFactura = cloneString(o.URLFactura)
	c.URLComprobanteRetencion = cloneString(o.URLComprobanteRetencion)
	c.NroSerie = cloneString(o.NroSerie)
	if o.ValorRetencion != nil {
		v := *o.ValorRetencion
		c.ValorRetencion = &v
	}
	if o.ValorDetraccion != nil {
		v := *o.ValorDetraccion
		c.ValorDetraccion = &v
	}
	if o.DeletedAt != nil {
		t := *o.DeletedAt
		c.DeletedAt = &t
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr is a convenience for optional string fields.
func StringPtr(s string) *string {
	return &s
}
