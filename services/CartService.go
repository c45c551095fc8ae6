package services

import (
	"context"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CartService struct {
	catalog CatalogService
	cr      repository.CartRepository
}

func NewCartService(catalog CatalogService, cartRepo repository.CartRepository) CartService {
	return CartService{
		catalog: catalog,
		cr:      cartRepo,
	}
}

func (cs *CartService) GetCart(ctx context.Context, sess entities.Session) (entities.Cart, error) {
	return cs.cr.GetCart(ctx, sess.CartKey())
}

// AddItem snapshots the product and merges it into the session cart. A zero quantity adds one.
func (cs *CartService) AddItem(ctx context.Context, sess entities.Session, req entities.CartRequest) (cart entities.Cart, err error) {
	if req.ProductId == uuid.Nil {
		err = errors.Wrap(models.ErrValidation, "product_id is required")
		return
	}
	if req.Quantity < 0 {
		err = errors.Wrap(models.ErrValidation, "quantity must be positive")
		return
	}
	if req.Quantity > entities.MaxLineQuantity {
		err = errors.Wrapf(models.ErrValidation, "quantity must not exceed %d", entities.MaxLineQuantity)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	prod, err := cs.catalog.GetById(ctx, req.ProductId)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.WithField("product", req.ProductId).Warn("AddItem: product does not exist")
		}
		return
	}
	cart, err = cs.cr.GetCart(ctx, sess.CartKey())
	if err != nil {
		return
	}
	if !cart.Add(prod, req.Quantity) {
		err = errors.Wrapf(models.ErrValidation, "quantity must not exceed %d", entities.MaxLineQuantity)
		return
	}
	err = cs.cr.SetCart(ctx, sess.CartKey(), cart)
	return
}

// UpdateQuantity sets a line's quantity; zero or below drops the line.
func (cs *CartService) UpdateQuantity(ctx context.Context, sess entities.Session, req entities.CartRequest) (cart entities.Cart, err error) {
	if req.ProductId == uuid.Nil {
		err = errors.Wrap(models.ErrValidation, "product_id is required")
		return
	}
	if req.Quantity > entities.MaxLineQuantity {
		err = errors.Wrapf(models.ErrValidation, "quantity must not exceed %d", entities.MaxLineQuantity)
		return
	}
	cart, err = cs.cr.GetCart(ctx, sess.CartKey())
	if err != nil {
		return
	}
	if cart.SetQuantity(req.ProductId, req.Quantity) {
		err = cs.cr.SetCart(ctx, sess.CartKey(), cart)
	}
	return
}

// RemoveItem is a no-op for products that are not in the cart.
func (cs *CartService) RemoveItem(ctx context.Context, sess entities.Session, productId uuid.UUID) (cart entities.Cart, err error) {
	cart, err = cs.cr.GetCart(ctx, sess.CartKey())
	if err != nil {
		return
	}
	if cart.Remove(productId) {
		err = cs.cr.SetCart(ctx, sess.CartKey(), cart)
	}
	return
}

func (cs *CartService) GetTotal(ctx context.Context, sess entities.Session) (decimal.Decimal, error) {
	cart, err := cs.cr.GetCart(ctx, sess.CartKey())
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func (cs *CartService) Clear(ctx context.Context, sess entities.Session) error {
	return cs.cr.DeleteCart(ctx, sess.CartKey())
}
