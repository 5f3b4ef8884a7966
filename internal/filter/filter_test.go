package filter

import (
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
)

func jefe(o model.Order) model.Flag { return o.JefeProyecto }

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func numbers(orders []model.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.NumeroOrden)
	}
	return out
}

func fixture() []model.Order {
	return []model.Order{
		{ID: 1, NumeroOrden: "OC-1", NombreProveedor: "Acme Corp", Estado: model.EstadoPendiente, JefeProyecto: model.FlagApproved, FechaOrden: mustDate("2024-03-15")},
		{ID: 2, NumeroOrden: "OC-2", NombreProveedor: "Other", Estado: model.EstadoAprobada, JefeProyecto: model.FlagPending, FechaOrden: mustDate("2024-03-16")},
		{ID: 3, NumeroOrden: "OS-ACME-3", NombreProveedor: "Transportes Lima", Estado: model.EstadoAprobada, FechaOrden: mustDate("2024-03-15")},
	}
}

func TestSearchScenarioE(t *testing.T) {
	orders := []model.Order{
		{NumeroOrden: "OC-1", NombreProveedor: "Acme Corp"},
		{NumeroOrden: "OC-2", NombreProveedor: "Other"},
	}
	got := Apply(orders, Criteria{SearchQuery: "ACME"}, nil)
	assert.Equal(t, []string{"OC-1"}, numbers(got))
}

func TestSearchMatchesNumeroOrden(t *testing.T) {
	got := Apply(fixture(), Criteria{SearchQuery: "acme"}, jefe)
	assert.Equal(t, []string{"OC-1", "OS-ACME-3"}, numbers(got))
}

func TestEstadoTodosEqualsNoFilter(t *testing.T) {
	orders := fixture()
	assert.Equal(t, Apply(orders, Criteria{}, jefe), Apply(orders, Criteria{Estado: All}, jefe))
	assert.Equal(t, []string{"OC-2", "OS-ACME-3"}, numbers(Apply(orders, Criteria{Estado: model.EstadoAprobada}, jefe)))
}

func TestApprovalFilter(t *testing.T) {
	orders := fixture()
	assert.Equal(t, []string{"OC-1"}, numbers(Apply(orders, Criteria{Approval: ApprovalOK}, jefe)))
	// null and false both count as pending
	assert.Equal(t, []string{"OC-2", "OS-ACME-3"}, numbers(Apply(orders, Criteria{Approval: ApprovalPending}, jefe)))
	assert.Len(t, Apply(orders, Criteria{Approval: All}, jefe), 3)
}

func TestDateFilterIsCalendarEquality(t *testing.T) {
	got := Apply(fixture(), Criteria{Date: "2024-03-15"}, jefe)
	assert.Equal(t, []string{"OC-1", "OS-ACME-3"}, numbers(got))
	assert.Empty(t, Apply(fixture(), Criteria{Date: "2024-03-14"}, jefe))
}

func TestDeletedHiddenByDefault(t *testing.T) {
	now := time.Now()
	orders := fixture()
	orders[0].DeletedAt = &now

	assert.Equal(t, []string{"OC-2", "OS-ACME-3"}, numbers(Apply(orders, Criteria{}, jefe)))
	assert.Len(t, Apply(orders, Criteria{IncludeDeleted: true}, jefe), 3)
}

func TestCombinedCriteria(t *testing.T) {
	got := Apply(fixture(), Criteria{SearchQuery: "oc-", Estado: model.EstadoAprobada, Approval: ApprovalPending}, jefe)
	assert.Equal(t, []string{"OC-2"}, numbers(got))
}
