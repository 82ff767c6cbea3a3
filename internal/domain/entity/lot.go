package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote comprado de un producto (línea de un documento de compra),
// disponible para consumo FIFO desde su fecha de compra.
// QtyRemaining es un contador desnormalizado: la verdad son las asignaciones no anuladas.
type Lot struct {
	ID            string
	ProductID     string
	PurchaseDocID string // documento de compra dueño del lote
	PurchaseDate  time.Time
	QtyOriginal   decimal.Decimal // inmutable después de creado
	QtyRemaining  decimal.Decimal // mutado solo por el asignador y el motor de anulación
	IsDisabled    bool            // excluye el documento de compra del lote de la asignación
	CreatedAt     time.Time
}
