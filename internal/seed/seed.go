// Package seed loads the starter catalog on first boot. Seeding is
// skipped whenever any products already exist.
package seed

import (
	"context"
	"fmt"
	"time"

	"threadline/internal/domain"
	"threadline/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedProduct struct {
	title       string
	description string
	price       string
	category    string
	image       string
	sizes       map[domain.Size]int
}

var catalog = []seedProduct{
	{
		title:       "BIYLACLESEN Women's 3-in-1 Snowboard Jacket Winter Coats",
		description: "3 in 1 detachable design with adjustable hood and cuffs, zippered hand pockets and a hidden inner pocket.",
		price:       "56.99",
		category:    "Women",
		image:       "https://fakestoreapi.com/img/51Y5NI-I5jL._AC_UX679_.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 5, domain.SizeS: 10, domain.SizeM: 15, domain.SizeL: 8, domain.SizeXL: 4},
	},
	{
		title:       "Lock and Love Women's Removable Hooded Faux Leather Moto Biker Jacket",
		description: "Faux leather moto jacket with removable hood, two front pockets and detail stitching at the sides.",
		price:       "29.95",
		category:    "Women",
		image:       "https://fakestoreapi.com/img/81XH0e8fefL._AC_UY879_.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 3, domain.SizeS: 8, domain.SizeM: 12, domain.SizeL: 6, domain.SizeXL: 2},
	},
	{
		title:       "Rain Jacket Women Windbreaker Striped Climbing Raincoats",
		description: "Lightweight hooded windbreaker with adjustable drawstring waist, fully striped lining and two side pockets.",
		price:       "39.99",
		category:    "Women",
		image:       "https://fakestoreapi.com/img/71HblAHs5xL._AC_UY879_-2.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 4, domain.SizeS: 9, domain.SizeM: 14, domain.SizeL: 7, domain.SizeXL: 3},
	},
	{
		title:       "MBJ Women's Solid Short Sleeve Boat Neck V",
		description: "Lightweight fabric with ribbed sleeve cuffs and a double stitched bottom hem.",
		price:       "9.85",
		category:    "Women",
		image:       "https://fakestoreapi.com/img/71z3kpMAYsL._AC_UY879_.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 6, domain.SizeS: 12, domain.SizeM: 18, domain.SizeL: 10, domain.SizeXL: 5},
	},
	{
		title:       "Mens Casual Premium Slim Fit T-Shirts",
		description: "Slim-fitting style with a three-button henley placket and lightweight, soft fabric.",
		price:       "22.30",
		category:    "Men",
		image:       "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 2, domain.SizeS: 7, domain.SizeM: 11, domain.SizeL: 9, domain.SizeXL: 4},
	},
	{
		title:       "Mens Cotton Jacket",
		description: "Great outerwear jacket for spring and autumn, a good gift choice for work or outdoor activities.",
		price:       "55.99",
		category:    "Men",
		image:       "https://fakestoreapi.com/img/71li-ujtlUL._AC_UX679_.jpg",
		sizes:       map[domain.Size]int{domain.SizeXS: 3, domain.SizeS: 6, domain.SizeM: 10, domain.SizeL: 8, domain.SizeXL: 5},
	},
}

// Run seeds the catalog when it is empty.
func Run(ctx context.Context, productRepo repository.ProductRepository, logger *zap.Logger) error {
	count, err := productRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}

	if count > 0 {
		logger.Info("Catalog already seeded, skipping", zap.Int("products", count))
		return nil
	}

	for _, p := range catalog {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("invalid seed price for %q: %w", p.title, err)
		}

		product := &domain.Product{
			ID:          uuid.New(),
			Title:       p.title,
			Description: p.description,
			Price:       price,
			Category:    p.category,
			Image:       p.image,
			Sizes:       p.sizes,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.title, err)
		}
	}

	logger.Info("Catalog seeded", zap.Int("products", len(catalog)))
	return nil
}
