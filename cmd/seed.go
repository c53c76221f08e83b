package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/Dosada05/pokernow/services"
	"github.com/gosimple/slug"
)

var demoShops = []struct {
	name, address string
	tables        int
}{
	{"Ace Lounge", "1-2-3 Dogenzaka, Shibuya", 4},
	{"River Room", "4-5-6 Kabukicho, Shinjuku", 2},
}

// seedDemo creates demo shops with tables when no shop exists yet. Shops
// have no API of their own, so this is how a fresh deployment gets one.
func seedDemo(ctx context.Context, shops repositories.ShopRepository, tables services.TableService, logger *slog.Logger) error {
	existing, err := shops.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("shops already present, skipping demo seed", slog.Int("shops", len(existing)))
		return nil
	}

	staff := models.Session{PlayerID: "seed", Role: models.RoleAdmin}
	for _, demo := range demoShops {
		shop := &models.Shop{ID: slug.Make(demo.name), Name: demo.name, Address: demo.address}
		if err := shops.Create(ctx, shop); err != nil {
			return fmt.Errorf("create shop %s: %w", demo.name, err)
		}
		for i := 1; i <= demo.tables; i++ {
			input := services.CreateTableInput{Name: fmt.Sprintf("Table %d", i)}
			if _, err := tables.Create(ctx, staff, shop.ID, input); err != nil {
				return fmt.Errorf("create table %s/%s: %w", shop.ID, input.Name, err)
			}
		}
		logger.Info("demo shop seeded", slog.String("shop_id", shop.ID), slog.Int("tables", demo.tables))
	}
	return nil
}
