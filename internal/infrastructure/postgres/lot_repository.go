package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, purchase_doc_id, purchase_date, qty_original, qty_remaining, is_disabled, created_at`

// Create persiste un lote nuevo con qty_remaining = qty_original.
func (r *LotRepo) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO purchase_lots (id, product_id, purchase_doc_id, purchase_date, qty_original, qty_remaining, is_disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.PurchaseDocID, lot.PurchaseDate,
		lot.QtyOriginal, lot.IsDisabled, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create lot: %w", err)
	}
	lot.QtyRemaining = lot.QtyOriginal
	return nil
}

// GetByID obtiene un lote por ID. Devuelve domain.ErrNotFound si no existe.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots WHERE id = $1`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.ProductID, &l.PurchaseDocID, &l.PurchaseDate,
		&l.QtyOriginal, &l.QtyRemaining, &l.IsDisabled, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// ListAvailable devuelve los lotes candidatos a consumo FIFO: mismo producto,
// no deshabilitados, comprados antes del corte y con restante positivo,
// ordenados por (purchase_date, id) ascendente.
func (r *LotRepo) ListAvailable(productID string, cutoff time.Time, excludePurchaseDocID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM purchase_lots
		WHERE product_id = $1
		  AND is_disabled = false
		  AND purchase_date < $2
		  AND qty_remaining > 0`
	args := []any{productID, cutoff}
	if excludePurchaseDocID != "" {
		query += " AND purchase_doc_id <> $3"
		args = append(args, excludePurchaseDocID)
	}
	query += " ORDER BY purchase_date ASC, id ASC"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.PurchaseDocID, &l.PurchaseDate,
			&l.QtyOriginal, &l.QtyRemaining, &l.IsDisabled, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// TryConsume descuenta qty solo si la fila todavía tiene al menos qty disponible.
// Un solo UPDATE condicional atómico: si otro asignador drenó el lote entre la
// lectura y este update, RowsAffected es 0 y devolvemos false (el caller salta
// al siguiente lote, sin reintentar).
func (r *LotRepo) TryConsume(lotID string, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE purchase_lots
		SET qty_remaining = qty_remaining - $2
		WHERE id = $1 AND qty_remaining >= $2`
	tag, err := r.q.Exec(context.Background(), query, lotID, qty)
	if err != nil {
		return false, fmt.Errorf("consume lot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Credit devuelve qty al restante del lote. Suma simple: restaurar capacidad no
// puede violar la cota superior mientras el libro de asignaciones sea consistente.
func (r *LotRepo) Credit(lotID string, qty decimal.Decimal) error {
	query := `UPDATE purchase_lots SET qty_remaining = qty_remaining + $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, lotID, qty)
	if err != nil {
		return fmt.Errorf("credit lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetRemaining escribe el contador recalculado (solo checker y backfill).
func (r *LotRepo) SetRemaining(lotID string, qty decimal.Decimal) error {
	query := `UPDATE purchase_lots SET qty_remaining = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, lotID, qty)
	if err != nil {
		return fmt.Errorf("set lot remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListIDsByProduct lista los IDs de todos los lotes de un producto (para barridos de integridad).
func (r *LotRepo) ListIDsByProduct(productID string) ([]string, error) {
	query := `SELECT id FROM purchase_lots WHERE product_id = $1 ORDER BY purchase_date ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lot ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
