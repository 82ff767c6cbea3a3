package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo implementación de AllocationRepository sobre PostgreSQL (usable con pool o tx).
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador del libro de asignaciones. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

// CreateBatch inserta las asignaciones en bloque. Lista vacía es no-op.
func (r *AllocationRepo) CreateBatch(allocations []*entity.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}
	query := `
		INSERT INTO lot_allocations (id, source_type, source_id, product_id, purchase_item_id, qty_allocated, allocated_at, is_voided)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)`
	for _, a := range allocations {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		_, err := r.q.Exec(context.Background(), query,
			a.ID, a.SourceType, a.SourceID, a.ProductID,
			a.PurchaseItemID, a.QtyAllocated, a.AllocatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("create allocation: %w", err)
		}
	}
	return nil
}

const allocationColumns = `id, source_type, source_id, product_id, purchase_item_id, qty_allocated, allocated_at, is_voided, voided_at, void_reason`

// ListActiveBySource devuelve las asignaciones no anuladas de un documento.
func (r *AllocationRepo) ListActiveBySource(sourceType, sourceID string) ([]*entity.Allocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM lot_allocations
		WHERE source_type = $1 AND source_id = $2 AND is_voided = false
		ORDER BY allocated_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list allocations by source: %w", err)
	}
	defer rows.Close()
	var list []*entity.Allocation
	for rows.Next() {
		var a entity.Allocation
		if err := rows.Scan(&a.ID, &a.SourceType, &a.SourceID, &a.ProductID,
			&a.PurchaseItemID, &a.QtyAllocated, &a.AllocatedAt,
			&a.IsVoided, &a.VoidedAt, &a.VoidReason); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// VoidBySource anula en bloque las filas activas del documento. El filtro
// is_voided = false hace la operación idempotente: la segunda llamada no
// encuentra filas y devuelve 0.
func (r *AllocationRepo) VoidBySource(sourceType, sourceID, reason string, at time.Time) (int64, error) {
	query := `
		UPDATE lot_allocations
		SET is_voided = true, voided_at = $3, void_reason = $4
		WHERE source_type = $1 AND source_id = $2 AND is_voided = false`
	tag, err := r.q.Exec(context.Background(), query, sourceType, sourceID, at, reason)
	if err != nil {
		return 0, fmt.Errorf("void allocations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SumActiveByLot suma qty_allocated de las asignaciones vivas que referencian el lote.
func (r *AllocationRepo) SumActiveByLot(lotID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(qty_allocated), 0)
		FROM lot_allocations
		WHERE purchase_item_id = $1 AND is_voided = false`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, lotID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum allocations by lot: %w", err)
	}
	return sum, nil
}

// AffectedLots devuelve los lotes distintos tocados por el documento (anulados incluidos).
func (r *AllocationRepo) AffectedLots(sourceType, sourceID string) ([]string, error) {
	query := `
		SELECT DISTINCT purchase_item_id
		FROM lot_allocations
		WHERE source_type = $1 AND source_id = $2
		ORDER BY purchase_item_id`
	rows, err := r.q.Query(context.Background(), query, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("affected lots: %w", err)
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
