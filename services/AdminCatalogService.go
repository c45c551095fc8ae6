package services

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

// Authorizer decides whether a profile may edit the catalog.
type Authorizer interface {
	IsAdmin(profile models.UserProfile) bool
}

type RoleAuthorizer struct{}

func (RoleAuthorizer) IsAdmin(profile models.UserProfile) bool {
	return profile.Id != uuid.Nil && profile.Role == models.RoleAdmin
}

type AdminCatalogService struct {
	pr      repository.ProductRepository
	catalog CatalogService
	authz   Authorizer
}

func NewAdminCatalogService(productRepo repository.ProductRepository, catalog CatalogService, authz Authorizer) AdminCatalogService {
	return AdminCatalogService{
		pr:      productRepo,
		catalog: catalog,
		authz:   authz,
	}
}

func (as *AdminCatalogService) allowed(actor models.UserProfile) error {
	if as.authz == nil || !as.authz.IsAdmin(actor) {
		log.WithField("user", actor.Id).Warn("admin catalog: access denied")
		return models.ErrUnauthorized
	}
	return nil
}

// List is the admin view of the catalog, sorted by name.
func (as *AdminCatalogService) List(ctx context.Context, actor models.UserProfile) ([]entities.Product, error) {
	if err := as.allowed(actor); err != nil {
		return nil, err
	}
	return as.catalog.Browse(ctx, "", "")
}

func (as *AdminCatalogService) Create(ctx context.Context, actor models.UserProfile, fields models.ProductFields) (prods []entities.Product, err error) {
	if err = as.allowed(actor); err != nil {
		return
	}
	pModel, err := validateProduct(fields)
	if err != nil {
		return
	}
	pModel.Id = uuid.New()
	if err = as.pr.CreateProduct(ctx, pModel); err != nil {
		return
	}
	log.WithField("product", pModel.Id).Info("product created")
	return as.catalog.Browse(ctx, "", "")
}

func (as *AdminCatalogService) Update(ctx context.Context, actor models.UserProfile, id uuid.UUID, fields models.ProductFields) (prods []entities.Product, err error) {
	if err = as.allowed(actor); err != nil {
		return
	}
	pModel, err := validateProduct(fields)
	if err != nil {
		return
	}
	pModel.Id = id
	exists, err := as.pr.UpdateProduct(ctx, pModel)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFound
		return
	}
	log.WithField("product", id).Info("product updated")
	return as.catalog.Browse(ctx, "", "")
}

func (as *AdminCatalogService) Delete(ctx context.Context, actor models.UserProfile, id uuid.UUID) (prods []entities.Product, err error) {
	if err = as.allowed(actor); err != nil {
		return
	}
	exists, err := as.pr.DeleteProduct(ctx, id)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFound
		return
	}
	log.WithField("product", id).Info("product deleted")
	return as.catalog.Browse(ctx, "", "")
}

var exportHeader = []string{"id", "name", "description", "price", "image", "category"}

// Export writes the whole catalog as a single-sheet workbook.
func (as *AdminCatalogService) Export(ctx context.Context, actor models.UserProfile, w io.Writer) error {
	prods, err := as.List(ctx, actor)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range prods {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Id.String())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.Category)
	}
	return file.Write(w)
}

func validateProduct(fields models.ProductFields) (pModel models.Product_db, err error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		err = errors.Wrap(models.ErrValidation, "name is required")
		return
	}
	rawPrice := strings.TrimSpace(fields.Price)
	if rawPrice == "" {
		err = errors.Wrap(models.ErrValidation, "price is required")
		return
	}
	image := strings.TrimSpace(fields.Image)
	if image == "" {
		err = errors.Wrap(models.ErrValidation, "image is required")
		return
	}
	price, e := decimal.NewFromString(rawPrice)
	if e != nil || price.IsNegative() {
		err = errors.Wrap(models.ErrValidation, "price must be a non-negative number")
		return
	}

	pModel = models.Product_db{
		Name:        name,
		Price:       price,
		Image:       sql.NullString{String: image, Valid: true},
		Description: nullable(fields.Description),
		Category:    nullable(fields.Category),
	}
	return
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
