package allocation

import (
	"context"

	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que los descuentos de lote y las filas de asignación
// se confirmen o reviertan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		allocRepo repository.AllocationRepository,
	) error) error
}
