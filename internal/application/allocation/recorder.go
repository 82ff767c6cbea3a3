package allocation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	domalloc "github.com/frigosur/districarnes-api/internal/domain/allocation"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// RecordAllocations persiste el resultado del builder como filas del libro de
// asignaciones, ligadas al documento origen. Debe correr en la misma
// transacción que el BuildAllocations que produjo las líneas: un descuento
// huérfano sin fila de asignación (o al revés) rompe el invariante del libro.
// Lista vacía es no-op.
func (e *Engine) RecordAllocations(allocRepo repository.AllocationRepository, sourceType, sourceID, productID string, lines []domalloc.Line, now time.Time) error {
	if len(lines) == 0 {
		return nil
	}
	if sourceType != entity.SourceTypeRun && sourceType != entity.SourceTypeAdj {
		return domain.ErrUnknownSourceType
	}
	rows := make([]*entity.Allocation, 0, len(lines))
	for _, ln := range lines {
		if ln.Qty.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		rows = append(rows, &entity.Allocation{
			SourceType:     sourceType,
			SourceID:       sourceID,
			ProductID:      productID,
			PurchaseItemID: ln.LotID,
			QtyAllocated:   ln.Qty,
			AllocatedAt:    now,
		})
	}
	return allocRepo.CreateBatch(rows)
}
