// Package attachment presents an order's document slots and prepares uploads for them.
package attachment

import (
	"strings"

	"backoffice/internal/model"
)

// Slot keys
const (
	SlotCotizacion  = "cotizacion"
	SlotFactura     = "factura"
	SlotOperacion   = "operacion"
	SlotComprobante = "comprobante_retencion"
	SlotOrdenPDF    = "orden_pdf"
)

// Slot is one document position of an order. URL is nil when nothing is attached.
type Slot struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	URL   *string `json:"url"`
}

func (s Slot) Present() bool {
	return s.URL != nil
}

// Slots lists the five document slots of o in display order. pdfURL is the
// derived link to the order's own PDF; empty means not available.
func Slots(family model.Family, o model.Order, pdfURL string) []Slot {
	return []Slot{
		{Key: SlotCotizacion, Label: "Cotización", URL: present(o.URLCotizacion)},
		{Key: SlotFactura, Label: "Factura", URL: present(o.URLFactura)},
		{Key: SlotOperacion, Label: "Operación", URL: present(o.URL)},
		{Key: SlotComprobante, Label: family.ReceiptLabel(), URL: present(o.URLComprobanteRetencion)},
		{Key: SlotOrdenPDF, Label: "PDF de la orden", URL: present(&pdfURL)},
	}
}

func present(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
