package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	domalloc "github.com/frigosur/districarnes-api/internal/domain/allocation"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// Engine motor de asignación FIFO de lotes: punto de entrada transaccional para
// el flujo de documentos de producción. Los métodos *InTx quedan disponibles
// para un caller que ya posee su propia transacción (repos atados a esa tx).
type Engine struct {
	txRunner TxRunner
}

// NewEngine construye el motor.
func NewEngine(txRunner TxRunner) *Engine {
	return &Engine{txRunner: txRunner}
}

// ConsumeInput consumo de un producto por un documento origen (RUN o ADJ).
type ConsumeInput struct {
	SourceType           string
	SourceID             string
	ProductID            string
	NeededQty            decimal.Decimal
	CutoffDate           time.Time
	ExcludePurchaseDocID string
}

// ConsumeForDocument asigna la cantidad requerida en una sola transacción:
// BuildAllocations elige y descuenta lotes, RecordAllocations persiste el
// resultado; Commit o Rollback juntos. Devuelve las líneas (lote, cantidad).
func (e *Engine) ConsumeForDocument(ctx context.Context, input ConsumeInput) ([]domalloc.Line, error) {
	if input.SourceType != entity.SourceTypeRun && input.SourceType != entity.SourceTypeAdj {
		return nil, domain.ErrUnknownSourceType
	}
	if input.SourceID == "" || input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var lines []domalloc.Line
	err := e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		allocRepo repository.AllocationRepository,
	) error {
		built, err := e.BuildAllocations(lotRepo, BuildRequest{
			ProductID:            input.ProductID,
			CutoffDate:           input.CutoffDate,
			NeededQty:            input.NeededQty,
			ExcludePurchaseDocID: input.ExcludePurchaseDocID,
		})
		if err != nil {
			return err
		}
		if err := e.RecordAllocations(allocRepo, input.SourceType, input.SourceID, input.ProductID, built, now); err != nil {
			return err
		}
		lines = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// VoidDocument revierte las asignaciones de un documento en su propia
// transacción. Devuelve cuántas filas se anularon (0 si no había activas).
func (e *Engine) VoidDocument(ctx context.Context, sourceType, sourceID, reason string) (int64, error) {
	if sourceType != entity.SourceTypeRun && sourceType != entity.SourceTypeAdj {
		return 0, domain.ErrUnknownSourceType
	}
	if sourceID == "" {
		return 0, domain.ErrInvalidInput
	}

	now := time.Now()
	var count int64
	err := e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		allocRepo repository.AllocationRepository,
	) error {
		var err error
		count, err = e.VoidInTx(lotRepo, allocRepo, sourceType, sourceID, reason, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecomputeLot recalcula el restante de un lote desde el libro de asignaciones,
// en su propia transacción.
func (e *Engine) RecomputeLot(ctx context.Context, lotID string) (decimal.Decimal, error) {
	if lotID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var remaining decimal.Decimal
	err := e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		allocRepo repository.AllocationRepository,
	) error {
		var err error
		remaining, err = e.RecomputeInTx(lotRepo, allocRepo, lotID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// RecomputeDocumentLots recalcula solo los lotes tocados por un documento.
// Devuelve lote -> restante recalculado.
func (e *Engine) RecomputeDocumentLots(ctx context.Context, sourceType, sourceID string) (map[string]decimal.Decimal, error) {
	if sourceType != entity.SourceTypeRun && sourceType != entity.SourceTypeAdj {
		return nil, domain.ErrUnknownSourceType
	}
	if sourceID == "" {
		return nil, domain.ErrInvalidInput
	}

	result := make(map[string]decimal.Decimal)
	err := e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		allocRepo repository.AllocationRepository,
	) error {
		lotIDs, err := e.AffectedLotsInTx(allocRepo, sourceType, sourceID)
		if err != nil {
			return err
		}
		for _, lotID := range lotIDs {
			remaining, err := e.RecomputeInTx(lotRepo, allocRepo, lotID)
			if err != nil {
				return err
			}
			result[lotID] = remaining
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
