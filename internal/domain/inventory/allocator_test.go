package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/inventory"
)

func newBatch(id, code string, qty int64, exp time.Time, created time.Time) *entity.Batch {
	return &entity.Batch{
		ID:              id,
		ProductID:       "prod-1",
		Code:            code,
		QuantityInitial: qty,
		QuantityCurrent: qty,
		Cost:            decimal.NewFromFloat(2.50),
		ExpirationDate:  exp,
		CreatedAt:       created,
	}
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// FIFO por vencimiento: con lotes [2025-01-01: 10] y [2025-06-01: 20],
// pedir 15 asigna 10 del primero y 5 del segundo, en ese orden.
func TestAllocate_FIFOPorVencimiento(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	b2 := newBatch("b2", "L-002", 20, date("2025-06-01"), date("2024-01-02"))
	// Orden de entrada invertido a propósito: Allocate debe ordenar por vencimiento.
	allocs, shortfall := inventory.Allocate([]*entity.Batch{b2, b1}, 15)

	require.Len(t, allocs, 2)
	assert.Equal(t, int64(0), shortfall)
	assert.Equal(t, "b1", allocs[0].BatchID, "primero el lote que vence antes")
	assert.Equal(t, int64(10), allocs[0].Quantity)
	assert.Equal(t, "b2", allocs[1].BatchID)
	assert.Equal(t, int64(5), allocs[1].Quantity)
	assert.Equal(t, int64(0), b1.QuantityCurrent)
	assert.Equal(t, int64(15), b2.QuantityCurrent)
}

func TestAllocate_EmpateDeVencimientoDesempataPorCreacion(t *testing.T) {
	exp := date("2025-03-01")
	b1 := newBatch("b1", "L-001", 5, exp, date("2024-02-01"))
	b2 := newBatch("b2", "L-002", 5, exp, date("2024-01-01"))
	allocs, shortfall := inventory.Allocate([]*entity.Batch{b1, b2}, 6)

	require.Len(t, allocs, 2)
	assert.Equal(t, int64(0), shortfall)
	assert.Equal(t, "b2", allocs[0].BatchID, "a igual vencimiento, gana el lote creado antes")
	assert.Equal(t, int64(5), allocs[0].Quantity)
	assert.Equal(t, int64(1), allocs[1].Quantity)
}

func TestAllocate_FaltanteCuandoSeAgotanLosLotes(t *testing.T) {
	b1 := newBatch("b1", "L-001", 4, date("2025-01-01"), date("2024-01-01"))
	allocs, shortfall := inventory.Allocate([]*entity.Batch{b1}, 10)

	require.Len(t, allocs, 1)
	assert.Equal(t, int64(6), shortfall, "debe reportar las unidades no cubiertas")
	assert.Equal(t, int64(4), allocs[0].Quantity)
	assert.Equal(t, int64(0), b1.QuantityCurrent)
}

func TestAllocate_IgnoraLotesVacios(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	b1.QuantityCurrent = 0
	b2 := newBatch("b2", "L-002", 10, date("2025-06-01"), date("2024-01-02"))
	allocs, shortfall := inventory.Allocate([]*entity.Batch{b1, b2}, 5)

	require.Len(t, allocs, 1)
	assert.Equal(t, int64(0), shortfall)
	assert.Equal(t, "b2", allocs[0].BatchID)
}

func TestAllocate_CantidadNoPositivaNoAsignaNada(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	allocs, shortfall := inventory.Allocate([]*entity.Batch{b1}, 0)
	assert.Empty(t, allocs)
	assert.Equal(t, int64(0), shortfall)
	assert.Equal(t, int64(10), b1.QuantityCurrent)
}

// Conservación de stock: liberar un set de asignaciones restaura cada lote
// exactamente a su valor previo a la asignación.
func TestRelease_RestauraElStock(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	b2 := newBatch("b2", "L-002", 20, date("2025-06-01"), date("2024-01-02"))
	allocs, _ := inventory.Allocate([]*entity.Batch{b1, b2}, 15)

	byID := map[string]*entity.Batch{"b1": b1, "b2": b2}
	require.NoError(t, inventory.Release(byID, allocs))
	assert.Equal(t, int64(10), b1.QuantityCurrent)
	assert.Equal(t, int64(20), b2.QuantityCurrent)
}

func TestRelease_ExcederCantidadInicialEsConflicto(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	// Doble liberación del mismo set: la segunda rompería el invariante del lote.
	allocs, _ := inventory.Allocate([]*entity.Batch{b1}, 10)
	byID := map[string]*entity.Batch{"b1": b1}
	require.NoError(t, inventory.Release(byID, allocs))
	err := inventory.Release(byID, allocs)
	assert.ErrorIs(t, err, domain.ErrConflict, "liberar dos veces no debe duplicar stock")
	assert.Equal(t, int64(10), b1.QuantityCurrent)
}

func TestRelease_LoteDesconocido(t *testing.T) {
	err := inventory.Release(map[string]*entity.Batch{}, []entity.BatchAllocation{{BatchID: "nope", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleasePartial_DevuelveEnOrdenInverso(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	b2 := newBatch("b2", "L-002", 20, date("2025-06-01"), date("2024-01-02"))
	allocs, _ := inventory.Allocate([]*entity.Batch{b1, b2}, 15) // b1: 10, b2: 5

	byID := map[string]*entity.Batch{"b1": b1, "b2": b2}
	released, err := inventory.ReleasePartial(byID, allocs, 7)
	require.NoError(t, err)

	// Primero se deshace el consumo del lote de vencimiento más lejano (b2: 5),
	// luego el resto del más próximo (b1: 2).
	require.Len(t, released, 2)
	assert.Equal(t, "b2", released[0].BatchID)
	assert.Equal(t, int64(5), released[0].Quantity)
	assert.Equal(t, "b1", released[1].BatchID)
	assert.Equal(t, int64(2), released[1].Quantity)
	assert.Equal(t, int64(17), b2.QuantityCurrent)
	assert.Equal(t, int64(2), b1.QuantityCurrent)
}

func TestReleasePartial_MasDeLoAsignadoEsConflicto(t *testing.T) {
	b1 := newBatch("b1", "L-001", 10, date("2025-01-01"), date("2024-01-01"))
	allocs, _ := inventory.Allocate([]*entity.Batch{b1}, 10)
	byID := map[string]*entity.Batch{"b1": b1}
	_, err := inventory.ReleasePartial(byID, allocs, 11)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(0), b1.QuantityCurrent, "no debe haber mutación parcial")
}
