package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrder = `{
  "id": 17,
  "numero_orden": "OC-0017",
  "fecha_orden": "2024-03-15T00:00:00.000000Z",
  "nombre_proveedor": "Acme Corp",
  "ruc_proveedor": "20123456789",
  "moneda": "SOLES",
  "subtotal": "1000.00",
  "igv": 180,
  "total": "1180.00",
  "estado": "PENDIENTE",
  "auto_administrador": true,
  "jefe_proyecto": false,
  "auto_contabilidad": null,
  "procede_pago": "PAGAR",
  "retencion": "RET-3",
  "valor_retencion": "35.40",
  "tiene_anticipo": "NO",
  "url": null,
  "url_factura": "https://files.example/f.pdf",
  "deleted_at": null
}`

func TestOrderDecode(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(sampleOrder), &o))

	assert.Equal(t, int64(17), o.ID)
	assert.Equal(t, "2024-03-15", o.FechaOrden.String())
	assert.Equal(t, FlagApproved, o.AutoAdministrador)
	assert.Equal(t, FlagPending, o.JefeProyecto)
	assert.Equal(t, FlagNotApplicable, o.AutoContabilidad)
	assert.True(t, o.PaymentIs(ProcedePagoPagar))
	assert.Equal(t, "180", o.IGV.String())
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.IGV)))
	assert.Equal(t, 1, o.ApprovalCount())
	assert.False(t, o.HasOperationFile())
	assert.False(t, o.IsDeleted())
	require.NotNil(t, o.ValorRetencion)
	assert.Equal(t, "35.4", o.ValorRetencion.String())
}

func TestFlagJSONRoundTrip(t *testing.T) {
	type row struct {
		A Flag `json:"a"`
		B Flag `json:"b"`
		C Flag `json:"c"`
	}
	out, err := json.Marshal(row{A: FlagApproved, B: FlagPending})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true,"b":false,"c":null}`, string(out))

	var back row
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":0}`), &back))
	assert.Equal(t, FlagApproved, back.A)
	assert.Equal(t, FlagPending, back.B)
	assert.Equal(t, FlagNotApplicable, back.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"yes"}`), &back))
}

func TestFlagAcceptsQuotedBooleans(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"auto_administrador":"true","jefe_proyecto":"false","auto_contabilidad":"1"}`), &o))
	assert.Equal(t, FlagApproved, o.AutoAdministrador)
	assert.Equal(t, FlagPending, o.JefeProyecto)
	assert.Equal(t, FlagApproved, o.AutoContabilidad)

	var f Flag
	err := f.UnmarshalJSON([]byte(`{"x":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `{"x":1}`)
}

func TestFlagOf(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, FlagApproved, FlagOf(&yes))
	assert.Equal(t, FlagPending, FlagOf(&no))
	assert.Equal(t, FlagNotApplicable, FlagOf(nil))
}

func TestDateDisplayIgnoresLocalZone(t *testing.T) {
	prev := time.Local
	t.Cleanup(func() { time.Local = prev })

	for _, zone := range []string{"America/Lima", "Pacific/Kiritimati", "UTC"} {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			continue
		}
		time.Local = loc
		d, err := ParseDate("2024-03-15")
		require.NoError(t, err)
		assert.Equal(t, "15/03/2024", d.Display(), zone)
		assert.Equal(t, "2024-03-15", d.String(), zone)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-01 10:22:00"`), &d))
	assert.Equal(t, "01/12/2024", d.Display())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-01"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	out, _ = json.Marshal(d)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/03/2024"`), &d))
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	o := Order{URL: StringPtr("a"), DeletedAt: &now}
	c := o.Clone()
	*c.URL = "b"
	c.DeletedAt = nil
	assert.Equal(t, "a", *o.URL)
	assert.NotNil(t, o.DeletedAt)
}

func TestFamily(t *testing.T) {
	f, err := ParseFamily(" Servicio ")
	require.NoError(t, err)
	assert.Equal(t, FamilyServicio, f)
	assert.Equal(t, "ordenes-servicio", f.Resource())
	assert.Equal(t, EventOrdenServicioUpdated, f.UpdateEvent())
	assert.Equal(t, EventOrdenCompraUpdated, FamilyCompra.UpdateEvent())

	_, err = ParseFamily("venta")
	assert.Error(t, err)
}
