package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain/entity"
)

// ShortageTolerance holgura absoluta entre cantidad pedida y asignada antes de
// tratar el faltante como error (absorbe ruido de pesaje/redondeo en mercancía
// física). Es una constante global independiente de la unidad de medida; si el
// sistema llega a manejar varias unidades por producto tendrá que volverse
// configurable por unidad.
var ShortageTolerance = decimal.NewFromFloat(0.3)

// Line es un par (lote, cantidad) elegido por el builder.
type Line struct {
	LotID string
	Qty   decimal.Decimal
}

// WithinTolerance indica si un faltante es aceptable como asignación parcial.
func WithinTolerance(shortage decimal.Decimal) bool {
	return shortage.LessThanOrEqual(ShortageTolerance)
}

// Take calcula cuánto consumir de un lote: lo que queda o lo que falta, lo menor.
func Take(remaining, stillNeeded decimal.Decimal) decimal.Decimal {
	if remaining.LessThan(stillNeeded) {
		return remaining
	}
	return stillNeeded
}

// LessFIFO define el orden total de consumo: fecha de compra ascendente y, a
// igual fecha, id ascendente (proxy determinista del orden de inserción).
func LessFIFO(a, b *entity.Lot) bool {
	if !a.PurchaseDate.Equal(b.PurchaseDate) {
		return a.PurchaseDate.Before(b.PurchaseDate)
	}
	return a.ID < b.ID
}
