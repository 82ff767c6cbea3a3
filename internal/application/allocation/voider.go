package allocation

import (
	"fmt"
	"time"

	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// VoidInTx revierte las asignaciones de un documento dentro de la transacción
// del caller: acredita cada cantidad de vuelta a su lote y marca las filas
// anuladas (nunca se borran; el historial queda para auditoría y recálculo).
//
// Si el documento no tiene asignaciones activas devuelve 0 sin error: anular
// dos veces, o anular un documento que nunca asignó, es un no-op idempotente.
func (e *Engine) VoidInTx(lotRepo repository.LotRepository, allocRepo repository.AllocationRepository, sourceType, sourceID, reason string, now time.Time) (int64, error) {
	active, err := allocRepo.ListActiveBySource(sourceType, sourceID)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		return 0, nil
	}
	// Acreditar capacidad no necesita decremento condicional: mientras el libro
	// fuera consistente, restaurar nunca viola la cota superior del lote.
	for _, a := range active {
		if err := lotRepo.Credit(a.PurchaseItemID, a.QtyAllocated); err != nil {
			return 0, fmt.Errorf("acreditar lote %s: %w", a.PurchaseItemID, err)
		}
	}
	count, err := allocRepo.VoidBySource(sourceType, sourceID, reason, now)
	if err != nil {
		return 0, err
	}
	return count, nil
}
