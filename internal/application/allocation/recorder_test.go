package allocation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frigosur/districarnes-api/internal/domain"
	domalloc "github.com/frigosur/districarnes-api/internal/domain/allocation"
	"github.com/frigosur/districarnes-api/internal/domain/entity"
)

func TestRecordAllocations_ListaVaciaEsNoOp(t *testing.T) {
	eng, store := newTestEngine()

	err := eng.RecordAllocations(store, entity.SourceTypeRun, "op-1", testProduct, nil, time.Now())

	require.NoError(t, err)
	assert.Empty(t, store.allocs)
}

func TestRecordAllocations_TipoDeOrigenDesconocido(t *testing.T) {
	eng, store := newTestEngine()
	seedLot(t, store, "lote-1", testDay1, 10)
	lines := []domalloc.Line{{LotID: "lote-1", Qty: decimal.NewFromInt(5)}}

	err := eng.RecordAllocations(store, "VENTA", "op-1", testProduct, lines, time.Now())

	assert.ErrorIs(t, err, domain.ErrUnknownSourceType)
	assert.Empty(t, store.allocs)
}

func TestRecordAllocations_RechazaCantidadNoPositiva(t *testing.T) {
	eng, store := newTestEngine()
	seedLot(t, store, "lote-1", testDay1, 10)
	lines := []domalloc.Line{{LotID: "lote-1", Qty: decimal.Zero}}

	err := eng.RecordAllocations(store, entity.SourceTypeAdj, "adj-1", testProduct, lines, time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.allocs)
}
