package main

import (
	"context"
	"flag"
	"strings"

	"github.com/frigosur/districarnes-api/internal/application/allocation"
	"github.com/frigosur/districarnes-api/internal/infrastructure/postgres"
	"github.com/frigosur/districarnes-api/pkg/config"
	"github.com/frigosur/districarnes-api/pkg/logger"
)

// lotaudit: barrido de integridad del contador qty_remaining contra el libro de
// asignaciones. Por defecto solo reporta desvíos; con -apply escribe el valor
// recalculado (útil también como backfill al migrar datos sin contador).
func main() {
	var (
		productID = flag.String("product", "", "auditar todos los lotes de este producto")
		source    = flag.String("source", "", "auditar solo los lotes tocados por un documento (TIPO:ID, ej. RUN:123)")
		apply     = flag.Bool("apply", false, "escribir las correcciones en vez de solo reportarlas")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	if *productID == "" && *source == "" {
		log.Fatal().Msg("uso: lotaudit -product <id> | -source TIPO:ID [-apply]")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	lotRepo := postgres.NewLotRepository(pool)
	allocRepo := postgres.NewAllocationRepository(pool)
	engine := allocation.NewEngine(postgres.NewTxRunner(pool))

	var lotIDs []string
	if *source != "" {
		sourceType, sourceID, ok := strings.Cut(*source, ":")
		if !ok || sourceType == "" || sourceID == "" {
			log.Fatal().Str("source", *source).Msg("formato de -source inválido, se espera TIPO:ID")
		}
		lotIDs, err = allocRepo.AffectedLots(sourceType, sourceID)
		if err != nil {
			log.Fatal().Err(err).Msg("listar lotes del documento")
		}
	} else {
		lotIDs, err = lotRepo.ListIDsByProduct(*productID)
		if err != nil {
			log.Fatal().Err(err).Msg("listar lotes del producto")
		}
	}

	drift := 0
	for _, lotID := range lotIDs {
		lot, err := lotRepo.GetByID(lotID)
		if err != nil {
			log.Fatal().Err(err).Str("lot", lotID).Msg("leer lote")
		}
		sum, err := allocRepo.SumActiveByLot(lotID)
		if err != nil {
			log.Fatal().Err(err).Str("lot", lotID).Msg("sumar asignaciones")
		}
		expected := lot.QtyOriginal.Sub(sum)
		if expected.Equal(lot.QtyRemaining) {
			continue
		}
		drift++
		ev := log.Warn().
			Str("lot", lotID).
			Str("product", lot.ProductID).
			Str("qty_remaining", lot.QtyRemaining.String()).
			Str("expected", expected.String())
		if *apply {
			if _, err := engine.RecomputeLot(ctx, lotID); err != nil {
				log.Fatal().Err(err).Str("lot", lotID).Msg("recalcular lote")
			}
			ev.Bool("corrected", true)
		}
		ev.Msg("contador desviado del libro de asignaciones")
	}

	log.Info().
		Int("lots", len(lotIDs)).
		Int("drift", drift).
		Bool("apply", *apply).
		Msg("auditoría de lotes completada")
}
