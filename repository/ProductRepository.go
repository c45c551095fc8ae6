package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"combatStore/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) (prods []models.Product_db, err error)
	GetProductById(ctx context.Context, id uuid.UUID) (pModel models.Product_db, exists bool, err error)
	CreateProduct(ctx context.Context, pModel models.Product_db) (err error)
	UpdateProduct(ctx context.Context, pModel models.Product_db) (exists bool, err error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (exists bool, err error)
}

type ProductRepo struct {
	db *sqlx.DB
}

func NewProductRepository(conn *sqlx.DB) (ProductRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &ProductRepo{
		db: conn,
	}, nil
}

const productColumns = "id, name, description, price, image, category"

func (p *ProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) (prods []models.Product_db, err error) {
	query, args := buildProductListQuery(filter)
	prods = []models.Product_db{}
	err = p.db.SelectContext(ctx, &prods, query, args...)
	if err != nil {
		log.WithError(err).WithField("query", query).Error("ListProducts")
		err = models.NewStoreError("ListProducts", err)
	}
	return
}

// buildProductListQuery ANDs the category and search conditions; both are case-insensitive.
func buildProductListQuery(filter models.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(name), lower($%d)) > 0 OR strpos(lower(coalesce(description, '')), lower($%d)) > 0)", n, n))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query = query + " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.OrderByName {
		query = query + " ORDER BY name ASC"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query = query + fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (p *ProductRepo) GetProductById(ctx context.Context, id uuid.UUID) (pModel models.Product_db, exists bool, err error) {
	err = p.db.GetContext(ctx, &pModel, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		} else {
			log.WithError(err).Error("GetProductById")
			err = models.NewStoreError("GetProductById", err)
		}
		return
	}
	exists = true
	return
}

func (p *ProductRepo) CreateProduct(ctx context.Context, pModel models.Product_db) (err error) {
	_, err = p.db.NamedExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (:id, :name, :description, :price, :image, :category)", pModel)
	if err != nil {
		log.WithError(err).Error("CreateProduct")
		err = models.NewStoreError("CreateProduct", err)
	}
	return
}

func (p *ProductRepo) UpdateProduct(ctx context.Context, pModel models.Product_db) (exists bool, err error) {
	res, e := p.db.NamedExecContext(ctx,
		"UPDATE products SET name = :name, description = :description, price = :price, image = :image, category = :category WHERE id = :id", pModel)
	if e != nil {
		log.WithError(e).Error("UpdateProduct")
		err = models.NewStoreError("UpdateProduct", e)
		return
	}
	return affected(res, "UpdateProduct")
}

func (p *ProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) (exists bool, err error) {
	res, e := p.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if e != nil {
		log.WithError(e).Error("DeleteProduct")
		err = models.NewStoreError("DeleteProduct", e)
		return
	}
	return affected(res, "DeleteProduct")
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		log.WithError(err).Errorf("%s: rows affected", op)
		return false, models.NewStoreError(op, err)
	}
	return n > 0, nil
}
