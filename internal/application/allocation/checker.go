package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// RecomputeInTx recalcula el restante de un lote a partir del libro:
// qty_remaining = qty_original - sum(qty_allocated de asignaciones no anuladas),
// y escribe la corrección si el contador desnormalizado difiere. Las filas de
// asignación son la verdad; el contador es una caché de su suma. Devuelve el
// valor recalculado.
//
// Falla con domain.ErrNotFound si el lote no existe (bug del caller, no una
// condición a recuperar).
func (e *Engine) RecomputeInTx(lotRepo repository.LotRepository, allocRepo repository.AllocationRepository, lotID string) (decimal.Decimal, error) {
	lot, err := lotRepo.GetByID(lotID)
	if err != nil {
		return decimal.Zero, err
	}
	sum, err := allocRepo.SumActiveByLot(lotID)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := lot.QtyOriginal.Sub(sum)
	if !remaining.Equal(lot.QtyRemaining) {
		if err := lotRepo.SetRemaining(lotID, remaining); err != nil {
			return decimal.Zero, err
		}
	}
	return remaining, nil
}

// AffectedLotsInTx devuelve los lotes distintos tocados por las asignaciones de
// un documento (anuladas incluidas), para recalcular solo lo que cambió en vez
// de barrer todo el producto.
func (e *Engine) AffectedLotsInTx(allocRepo repository.AllocationRepository, sourceType, sourceID string) ([]string, error) {
	return allocRepo.AffectedLots(sourceType, sourceID)
}
