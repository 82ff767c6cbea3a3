package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain/entity"
)

// AllocationRepository define el puerto de persistencia para el libro de
// asignaciones (consumos de lote por documento origen).
type AllocationRepository interface {
	// CreateBatch inserta las filas en bloque. Lista vacía es no-op.
	CreateBatch(allocations []*entity.Allocation) error
	// ListActiveBySource devuelve las asignaciones no anuladas de un documento,
	// ordenadas por allocated_at ascendente y id como desempate.
	ListActiveBySource(sourceType, sourceID string) ([]*entity.Allocation, error)
	// VoidBySource marca anuladas todas las filas activas del documento en un
	// solo update (filtro is_voided = false incluido, por idempotencia).
	// Devuelve cuántas filas cambiaron.
	VoidBySource(sourceType, sourceID, reason string, at time.Time) (int64, error)
	// SumActiveByLot suma qty_allocated de las asignaciones no anuladas del lote.
	SumActiveByLot(lotID string) (decimal.Decimal, error)
	// AffectedLots devuelve el conjunto (sin duplicados) de lotes tocados por
	// las asignaciones del documento, anuladas o no.
	AffectedLots(sourceType, sourceID string) ([]string, error)
}
