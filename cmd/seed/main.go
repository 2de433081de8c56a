package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"realestate-marketplace/internal/config"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
	pg "realestate-marketplace/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tierRepo := pg.NewTierRepo(pool)
	codeRepo := pg.NewPromoCodeRepo(pool)

	// If tiers already exist, do nothing
	existing, err := tierRepo.ListActive(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list tiers: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d tiers already present. No changes.\n", len(existing))
		for _, t := range existing {
			fmt.Printf("  - %s (rank=%d)\n", t.Type, t.BoostRank)
		}
		return
	}

	now := time.Now()
	tiers := []*model.PromotionTier{
		{
			ID:        uuid.NewString(),
			Type:      model.TierBasic,
			Prices:    map[int]int64{7: 500_00, 30: 1_500_00, 60: 2_500_00, 90: 3_200_00},
			BoostRank: 3,
			Features:  []string{"search_boost"},
			Active:    true,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			Type:      model.TierStandard,
			Prices:    map[int]int64{7: 1_000_00, 30: 3_000_00, 60: 5_000_00, 90: 6_500_00},
			BoostRank: 2,
			Features:  []string{"search_boost", "highlight"},
			Active:    true,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			Type:      model.TierPremium,
			Prices:    map[int]int64{7: 2_000_00, 30: 6_000_00, 60: 10_000_00, 90: 13_000_00},
			BoostRank: 1,
			Features:  []string{"search_boost", "highlight", "featured_badge", "homepage"},
			Active:    true,
			CreatedAt: now,
		},
	}

	for _, t := range tiers {
		if err := tierRepo.Save(ctx, repository.NoTX, t); err != nil {
			log.Fatalf("seed tier %s: %v", t.Type, err)
		}
		fmt.Printf("seeded tier: %s (id=%s)\n", t.Type, t.ID)
	}

	code := &model.PromoCode{
		ID:              uuid.NewString(),
		Code:            "LAUNCH10",
		DiscountPercent: 10,
		MaxUses:         100,
		ValidUntil:      now.AddDate(0, 3, 0),
		Active:          true,
		CreatedAt:       now,
	}
	if err := codeRepo.Save(ctx, repository.NoTX, code); err != nil {
		log.Fatalf("seed promo code: %v", err)
	}
	fmt.Printf("seeded promo code: %s (%d%% off, max %d uses)\n", code.Code, code.DiscountPercent, code.MaxUses)

	fmt.Println("Seeding complete.")
}
