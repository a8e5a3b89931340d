// Package inventory contiene los servicios de dominio del libro de lotes:
// asignación FIFO por vencimiento y su reversa (devolución a stock).
package inventory

import (
	"sort"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Allocate consume lotes por orden de vencimiento (el más próximo primero)
// hasta cubrir required unidades base. Decrementa QuantityCurrent de los lotes
// recibidos y devuelve las asignaciones resultantes más el faltante si los
// lotes se agotan antes. El caller decide si el faltante bloquea o no.
//
// El orden es determinista: vencimiento ascendente con desempate por fecha de
// creación (sort estable, así el orden de inserción resuelve empates exactos).
func Allocate(batches []*entity.Batch, required int64) ([]entity.BatchAllocation, int64) {
	if required <= 0 {
		return nil, 0
	}
	candidates := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.QuantityCurrent > 0 {
			candidates = append(candidates, b)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].ExpirationDate.Equal(candidates[j].ExpirationDate) {
			return candidates[i].ExpirationDate.Before(candidates[j].ExpirationDate)
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	remaining := required
	var allocations []entity.BatchAllocation
	for _, b := range candidates {
		if remaining == 0 {
			break
		}
		take := remaining
		if b.QuantityCurrent < take {
			take = b.QuantityCurrent
		}
		b.QuantityCurrent -= take
		allocations = append(allocations, entity.BatchAllocation{
			BatchID:   b.ID,
			BatchCode: b.Code,
			Quantity:  take,
		})
		remaining -= take
	}
	return allocations, remaining
}

// Release devuelve al stock un set completo de asignaciones: incrementa cada
// lote referenciado en la cantidad asignada. No es idempotente por sí misma:
// el dueño de las asignaciones (la línea de pedido/venta) lleva el estado
// applied/released y no debe liberar dos veces el mismo set.
func Release(batchesByID map[string]*entity.Batch, allocations []entity.BatchAllocation) error {
	for _, a := range allocations {
		b, ok := batchesByID[a.BatchID]
		if !ok {
			return domain.ErrNotFound
		}
		if b.QuantityCurrent+a.Quantity > b.QuantityInitial {
			// superar la cantidad inicial rompe el invariante del lote
			return domain.ErrConflict
		}
		b.QuantityCurrent += a.Quantity
	}
	return nil
}

// ReleasePartial devuelve al stock quantity unidades base de un set de
// asignaciones, recorriéndolas en orden inverso (primero el lote de
// vencimiento más lejano) para deshacer el consumo FIFO simétricamente.
// Devuelve las porciones efectivamente liberadas por lote.
func ReleasePartial(batchesByID map[string]*entity.Batch, allocations []entity.BatchAllocation, quantity int64) ([]entity.BatchAllocation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var total int64
	for _, a := range allocations {
		total += a.Quantity
	}
	if quantity > total {
		return nil, domain.ErrConflict
	}
	remaining := quantity
	var released []entity.BatchAllocation
	for i := len(allocations) - 1; i >= 0 && remaining > 0; i-- {
		a := allocations[i]
		b, ok := batchesByID[a.BatchID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		give := remaining
		if a.Quantity < give {
			give = a.Quantity
		}
		if b.QuantityCurrent+give > b.QuantityInitial {
			return nil, domain.ErrConflict
		}
		b.QuantityCurrent += give
		released = append(released, entity.BatchAllocation{
			BatchID:   a.BatchID,
			BatchCode: a.BatchCode,
			Quantity:  give,
		})
		remaining -= give
	}
	return released, nil
}
