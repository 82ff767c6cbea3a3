package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento origen que consumen lotes.
const (
	SourceTypeRun = "RUN" // orden de producción
	SourceTypeAdj = "ADJ" // ajuste manual
)

// Allocation registra que un documento origen consumió una cantidad de un lote
// específico. Es inmutable salvo sus campos de anulación: nunca se borra,
// se anula en sitio (libro mayor de consumo, trazable para auditoría).
type Allocation struct {
	ID             string
	SourceType     string // RUN o ADJ
	SourceID       string
	ProductID      string
	PurchaseItemID string          // referencia al lote (purchase_lots.id)
	QtyAllocated   decimal.Decimal // > 0 al crearse; inmutable durante la vida de la fila
	AllocatedAt    time.Time       // define el orden de desempate para recálculo y auditoría
	IsVoided       bool
	VoidedAt       *time.Time
	VoidReason     *string
}
