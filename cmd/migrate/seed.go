package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample products for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			db, err := persistence.NewDatabase(&cfg.Database, persistence.WithZapLogger(c.log, logger.MapGormLogLevel(c.logLevel)))
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()
			if db.Driver() == "sqlite" {
				if err := db.AutoMigrate(cmd.Context()); err != nil {
					return err
				}
			}

			n, err := seedProducts(cmd.Context(), persistence.NewGormProductRepository(db.DB), c.log)
			if err != nil {
				return err
			}
			c.log.Info("Seed complete", zap.Int("products_created", n))
			return nil
		},
	}
}

type productStore interface {
	FindBySKU(ctx context.Context, sku string) (*catalog.Product, error)
	Save(ctx context.Context, product *catalog.Product) error
}

// seedProducts saves the sample catalog, skipping SKUs that already exist
func seedProducts(ctx context.Context, repo productStore, log *zap.Logger) (int, error) {
	products, err := sampleProducts()
	if err != nil {
		return 0, err
	}
	created := 0
	for _, p := range products {
		_, err := repo.FindBySKU(ctx, p.SKU)
		if err == nil {
			log.Debug("Sample product exists", zap.String("sku", p.SKU))
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, fmt.Errorf("lookup %s: %w", p.SKU, err)
		}
		if err := repo.Save(ctx, p); err != nil {
			return created, fmt.Errorf("save %s: %w", p.SKU, err)
		}
		created++
	}
	return created, nil
}

func sampleProducts() ([]*catalog.Product, error) {
	d := decimal.RequireFromString
	intPtr := func(v int) *int { return &v }
	decPtr := func(v decimal.Decimal) *decimal.Decimal { return &v }

	notebook, err := catalog.NewProduct("NB-A5-100", "A5 ruled notebook", d("120.00"))
	if err != nil {
		return nil, err
	}
	notebook.SetRetailPrice(catalog.RetailPrice{MRP: decPtr(d("150.00")), SellingPrice: decPtr(d("120.00")), Discount: d("20")})
	if err := notebook.SetStock(catalog.StockStatusInStock, 500); err != nil {
		return nil, err
	}
	notebook.SetCorporatePricing(catalog.CorporatePricing{
		Enabled:              true,
		MinimumOrderQuantity: 10,
		PriceTiers: []catalog.PriceTier{
			{MinQuantity: 10, MaxQuantity: intPtr(49), PricePerUnit: d("105.00"), Discount: d("12.5")},
			{MinQuantity: 50, MaxQuantity: intPtr(199), PricePerUnit: d("95.00"), Discount: d("20.8")},
			{MinQuantity: 200, PricePerUnit: d("88.00"), Discount: d("26.7"), Description: "Bulk"},
		},
		CustomQuoteThreshold: intPtr(1000),
	})

	bottle, err := catalog.NewProduct("BTL-STEEL-750", "Steel water bottle 750ml", d("499.00"))
	if err != nil {
		return nil, err
	}
	bottle.SetFinalPrice(decPtr(d("449.00")))
	if err := bottle.SetStock(catalog.StockStatusInStock, 10); err != nil {
		return nil, err
	}

	kit, err := catalog.NewProduct("KIT-ONBOARD", "Employee onboarding kit", d("2400.00"))
	if err != nil {
		return nil, err
	}
	kit.SetCorporateOnly(true)
	if err := kit.SetStock(catalog.StockStatusPreOrder, 0); err != nil {
		return nil, err
	}
	kit.SetCorporatePricing(catalog.CorporatePricing{
		Enabled:              true,
		MinimumOrderQuantity: 25,
		PriceTiers: []catalog.PriceTier{
			{MinQuantity: 25, PricePerUnit: d("2100.00")},
		},
	})

	return []*catalog.Product{notebook, bottle, kit}, nil
}
