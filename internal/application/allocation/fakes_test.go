package allocation_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frigosur/districarnes-api/internal/domain"
	domalloc "github.com/frigosur/districarnes-api/internal/domain/allocation"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
	"github.com/frigosur/districarnes-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: implementan los puertos LotRepository y AllocationRepository
// con la misma semántica que el adaptador PostgreSQL (decremento condicional,
// filtros de candidatos, anulación en bloque) para probar el motor sin BD.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	lots   map[string]*entity.Lot
	allocs []*entity.Allocation
	// stealOnConsume simula un asignador concurrente: antes de las próximas n
	// llamadas a TryConsume sobre el lote, otro proceso drena su restante.
	stealOnConsume map[string]int
}

var _ repository.LotRepository = (*fakeStore)(nil)
var _ repository.AllocationRepository = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		lots:           make(map[string]*entity.Lot),
		stealOnConsume: make(map[string]int),
	}
}

func (s *fakeStore) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if _, ok := s.lots[lot.ID]; ok {
		return domain.ErrConflict
	}
	cp := *lot
	cp.QtyRemaining = cp.QtyOriginal
	s.lots[lot.ID] = &cp
	lot.QtyRemaining = lot.QtyOriginal
	return nil
}

func (s *fakeStore) GetByID(id string) (*entity.Lot, error) {
	lot, ok := s.lots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *lot
	return &cp, nil
}

func (s *fakeStore) ListAvailable(productID string, cutoff time.Time, excludePurchaseDocID string) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for _, lot := range s.lots {
		if lot.ProductID != productID || lot.IsDisabled {
			continue
		}
		if !lot.PurchaseDate.Before(cutoff) {
			continue
		}
		if !lot.QtyRemaining.GreaterThan(decimal.Zero) {
			continue
		}
		if excludePurchaseDocID != "" && lot.PurchaseDocID == excludePurchaseDocID {
			continue
		}
		cp := *lot
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return domalloc.LessFIFO(list[i], list[j]) })
	return list, nil
}

func (s *fakeStore) TryConsume(lotID string, qty decimal.Decimal) (bool, error) {
	lot, ok := s.lots[lotID]
	if !ok {
		return false, nil
	}
	if s.stealOnConsume[lotID] > 0 {
		s.stealOnConsume[lotID]--
		lot.QtyRemaining = decimal.Zero
		return false, nil
	}
	if lot.QtyRemaining.LessThan(qty) {
		return false, nil
	}
	lot.QtyRemaining = lot.QtyRemaining.Sub(qty)
	return true, nil
}

func (s *fakeStore) Credit(lotID string, qty decimal.Decimal) error {
	lot, ok := s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	lot.QtyRemaining = lot.QtyRemaining.Add(qty)
	return nil
}

func (s *fakeStore) SetRemaining(lotID string, qty decimal.Decimal) error {
	lot, ok := s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	lot.QtyRemaining = qty
	return nil
}

func (s *fakeStore) ListIDsByProduct(productID string) ([]string, error) {
	var ids []string
	for _, lot := range s.lots {
		if lot.ProductID == productID {
			ids = append(ids, lot.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) CreateBatch(allocations []*entity.Allocation) error {
	for _, a := range allocations {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if _, ok := s.lots[a.PurchaseItemID]; !ok {
			return domain.ErrNotFound
		}
		cp := *a
		s.allocs = append(s.allocs, &cp)
	}
	return nil
}

func (s *fakeStore) ListActiveBySource(sourceType, sourceID string) ([]*entity.Allocation, error) {
	var list []*entity.Allocation
	for _, a := range s.allocs {
		if a.SourceType == sourceType && a.SourceID == sourceID && !a.IsVoided {
			cp := *a
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AllocatedAt.Equal(list[j].AllocatedAt) {
			return list[i].AllocatedAt.Before(list[j].AllocatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *fakeStore) VoidBySource(sourceType, sourceID, reason string, at time.Time) (int64, error) {
	var count int64
	for _, a := range s.allocs {
		if a.SourceType == sourceType && a.SourceID == sourceID && !a.IsVoided {
			a.IsVoided = true
			voidedAt := at
			r := reason
			a.VoidedAt = &voidedAt
			a.VoidReason = &r
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) SumActiveByLot(lotID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range s.allocs {
		if a.PurchaseItemID == lotID && !a.IsVoided {
			sum = sum.Add(a.QtyAllocated)
		}
	}
	return sum, nil
}

func (s *fakeStore) AffectedLots(sourceType, sourceID string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range s.allocs {
		if a.SourceType == sourceType && a.SourceID == sourceID && !seen[a.PurchaseItemID] {
			seen[a.PurchaseItemID] = true
			ids = append(ids, a.PurchaseItemID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// fakeTxRunner ejecuta el callback directamente sobre el fake (sin transacción
// real): así los tests verifican que la compensación explícita del builder deja
// el almacén intacto aun sin un rollback que lo rescate.
type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	lotRepo repository.LotRepository,
	allocRepo repository.AllocationRepository,
) error) error {
	return fn(r.store, r.store)
}
