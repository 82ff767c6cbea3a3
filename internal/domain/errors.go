package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientQty   = errors.New("cantidad disponible insuficiente")
	ErrUnknownSourceType = errors.New("tipo de documento origen desconocido")
)

// ShortageErrorCode código estable para la capa que traduce el error al usuario.
const ShortageErrorCode = "INSUFFICIENT_AVAILABLE_QTY"

// ShortageError indica que los lotes disponibles no cubren la cantidad
// requerida dentro de la tolerancia. El builder revierte todos sus descuentos
// antes de retornarlo, así que no queda estado parcial.
type ShortageError struct {
	ProductID  string
	CutoffDate time.Time
	Needed     decimal.Decimal
	Allocated  decimal.Decimal
	Shortage   decimal.Decimal
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("%s: producto %s al %s: requerido %s, asignado %s, faltante %s",
		ShortageErrorCode, e.ProductID, e.CutoffDate.Format("2006-01-02"),
		e.Needed.String(), e.Allocated.String(), e.Shortage.String())
}

// Unwrap permite errors.Is(err, domain.ErrInsufficientQty).
func (e *ShortageError) Unwrap() error {
	return ErrInsufficientQty
}
