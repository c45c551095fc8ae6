package services

import (
	"context"
	"strings"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
)

const FeaturedLimit = 6

// CatalogService is the read-only side of the product table.
type CatalogService struct {
	pr repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return CatalogService{
		pr: productRepo,
	}
}

func (cs *CatalogService) List(ctx context.Context, filter models.ProductFilter) (prods []entities.Product, err error) {
	filter.Category = strings.TrimSpace(filter.Category)
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}
	filter.Search = strings.TrimSpace(filter.Search)

	rows, err := cs.pr.ListProducts(ctx, filter)
	if err != nil {
		return
	}
	prods = entities.ProductsFromDb(rows)
	return
}

// Browse is the store listing: filtered and sorted by name.
func (cs *CatalogService) Browse(ctx context.Context, category, search string) ([]entities.Product, error) {
	return cs.List(ctx, models.ProductFilter{
		Category:    category,
		Search:      search,
		OrderByName: true,
	})
}

func (cs *CatalogService) Featured(ctx context.Context) ([]entities.Product, error) {
	return cs.List(ctx, models.ProductFilter{Limit: FeaturedLimit})
}

func (cs *CatalogService) GetById(ctx context.Context, id uuid.UUID) (prod entities.Product, err error) {
	pModel, exists, err := cs.pr.GetProductById(ctx, id)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFound
		return
	}
	prod = entities.ProductFromDb(pModel)
	return
}
