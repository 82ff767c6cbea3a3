package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes de compra.
// Usado dentro de transacciones para garantizar consistencia.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	// ListAvailable devuelve los lotes candidatos a consumo: mismo producto,
	// no deshabilitados, fecha de compra estrictamente anterior al corte y
	// cantidad restante > 0, ordenados por (purchase_date, id) ascendente.
	// excludePurchaseDocID (opcional, "" = sin filtro) excluye los lotes de
	// un documento de compra concreto.
	ListAvailable(productID string, cutoff time.Time, excludePurchaseDocID string) ([]*entity.Lot, error)
	// TryConsume descuenta qty de qty_remaining solo si la fila aún tiene al
	// menos qty disponible (decremento condicional atómico). Devuelve false si
	// la precondición ya no se cumple (otro asignador ganó la carrera).
	TryConsume(lotID string, qty decimal.Decimal) (bool, error)
	// Credit devuelve qty al lote (suma simple, sin condición).
	Credit(lotID string, qty decimal.Decimal) error
	// SetRemaining escribe el valor recalculado del contador (solo checker/backfill).
	SetRemaining(lotID string, qty decimal.Decimal) error
	ListIDsByProduct(productID string) ([]string, error)
}
