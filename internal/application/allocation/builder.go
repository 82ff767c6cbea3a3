package allocation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	domalloc "github.com/frigosur/districarnes-api/internal/domain/allocation"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// BuildRequest cantidad requerida de un producto a una fecha de corte.
// ExcludePurchaseDocID (opcional) excluye los lotes de ese documento de compra.
type BuildRequest struct {
	ProductID            string
	CutoffDate           time.Time
	NeededQty            decimal.Decimal
	ExcludePurchaseDocID string
}

// BuildAllocations recorre los lotes disponibles en orden FIFO y descuenta de
// cada uno con un decremento condicional, hasta cubrir la cantidad requerida.
// Corre dentro de la transacción del caller (repos atados a esa tx).
//
// Si un decremento condicional falla (otro asignador drenó el lote en paralelo)
// el lote se salta sin reintentar. Si al agotar candidatos el faltante supera
// la tolerancia, se devuelve cada descuento ya aplicado a su lote y se retorna
// ShortageError: o el caller recibe un resultado completo (dentro de
// tolerancia) o el almacén queda exactamente como estaba.
//
// No crea filas de asignación; eso es trabajo de RecordAllocations, separado
// para que el caller pueda validar o mostrar la propuesta antes de confirmarla.
func (e *Engine) BuildAllocations(lotRepo repository.LotRepository, req BuildRequest) ([]domalloc.Line, error) {
	if req.ProductID == "" || req.CutoffDate.IsZero() || req.NeededQty.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	candidates, err := lotRepo.ListAvailable(req.ProductID, req.CutoffDate, req.ExcludePurchaseDocID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		// Sin candidatos: fallar de inmediato, sin recorrer nada.
		if domalloc.WithinTolerance(req.NeededQty) {
			return nil, nil
		}
		return nil, &domain.ShortageError{
			ProductID:  req.ProductID,
			CutoffDate: req.CutoffDate,
			Needed:     req.NeededQty,
			Allocated:  decimal.Zero,
			Shortage:   req.NeededQty,
		}
	}

	stillNeeded := req.NeededQty
	var lines []domalloc.Line
	for _, lot := range candidates {
		if !stillNeeded.GreaterThan(decimal.Zero) {
			break
		}
		take := domalloc.Take(lot.QtyRemaining, stillNeeded)
		applied, err := lotRepo.TryConsume(lot.ID, take)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Carrera perdida: otro asignador ya consumió este lote. Saltar.
			continue
		}
		lines = append(lines, domalloc.Line{LotID: lot.ID, Qty: take})
		stillNeeded = stillNeeded.Sub(take)
	}

	shortage := stillNeeded
	if !domalloc.WithinTolerance(shortage) {
		// Compensar: devolver cada descuento de esta llamada a su lote antes de
		// fallar, por si el caller captura el error y sigue en la misma tx.
		for _, ln := range lines {
			if err := lotRepo.Credit(ln.LotID, ln.Qty); err != nil {
				return nil, fmt.Errorf("revertir descuento del lote %s: %w", ln.LotID, err)
			}
		}
		// Allocated se reporta en cero: los descuentos ya fueron revertidos.
		return nil, &domain.ShortageError{
			ProductID:  req.ProductID,
			CutoffDate: req.CutoffDate,
			Needed:     req.NeededQty,
			Allocated:  decimal.Zero,
			Shortage:   shortage,
		}
	}
	return lines, nil
}
