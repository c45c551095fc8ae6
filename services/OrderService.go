package services

import (
	"context"
	"time"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type OrderService struct {
	or     repository.OrderRepository
	cr     repository.CartRepository
	events repository.EventDispatcher
	authz  Authorizer
	now    func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, dispatcher repository.EventDispatcher, authz Authorizer) OrderService {
	return OrderService{
		or:     orderRepo,
		cr:     cartRepo,
		events: dispatcher,
		authz:  authz,
		now:    time.Now,
	}
}

// Checkout turns every cart line into one order row inside a single transaction and clears the
// cart. A non-empty idempotencyKey is used as the checkout id; a key that was already stored
// replays the earlier result instead of inserting again.
func (ors *OrderService) Checkout(ctx context.Context, sess entities.Session, idempotencyKey string) (res entities.CheckoutResult, err error) {
	if sess.UserId == uuid.Nil {
		err = models.ErrUnauthenticated
		return
	}

	checkoutId := uuid.New()
	if idempotencyKey != "" {
		checkoutId, err = uuid.Parse(idempotencyKey)
		if err != nil {
			err = errors.Wrap(models.ErrValidation, "idempotency key must be a uuid")
			return
		}
		var replayed bool
		res, replayed, err = ors.replay(ctx, sess, checkoutId)
		if err != nil || replayed {
			return
		}
	}

	cart, err := ors.cr.GetCart(ctx, sess.CartKey())
	if err != nil {
		return
	}
	if cart.IsEmpty() {
		err = errors.Wrap(models.ErrValidation, "cart is empty")
		return
	}

	placedAt := ors.now().UTC()
	rows := lo.Map(cart.Items, func(li entities.CartLineItem, _ int) models.Order_db {
		return models.Order_db{
			Id:         uuid.New(),
			UserId:     sess.UserId,
			ProductId:  li.ProductId,
			Quantity:   li.Quantity,
			OrderDate:  placedAt,
			CheckoutId: uuid.NullUUID{UUID: checkoutId, Valid: true},
		}
	})

	inserted, err := ors.or.InsertBatch(ctx, checkoutId, rows)
	if err != nil {
		log.WithError(err).WithField("checkout", checkoutId).Error("Checkout: cart left intact")
		return
	}
	if !inserted {
		// a concurrent request with the same key committed first
		var replayed bool
		res, replayed, err = ors.replay(ctx, sess, checkoutId)
		if err == nil && !replayed {
			err = models.NewStoreError("Checkout", errors.New("checkout rows vanished after insert"))
		}
		return
	}

	ors.clearCart(ctx, sess)
	ors.publish(ctx, entities.OrderPlaced{
		CheckoutId: checkoutId,
		UserId:     sess.UserId,
		Items: lo.Map(rows, func(r models.Order_db, _ int) entities.OrderPlacedItem {
			return entities.OrderPlacedItem{ProductId: r.ProductId, Quantity: r.Quantity}
		}),
		PlacedAt: placedAt,
	})

	res = entities.CheckoutResult{
		CheckoutId: checkoutId,
		Orders: lo.Map(rows, func(r models.Order_db, i int) entities.Order {
			li := cart.Items[i]
			return entities.Order{
				Id:         r.Id,
				UserId:     r.UserId,
				ProductId:  r.ProductId,
				Quantity:   r.Quantity,
				OrderDate:  r.OrderDate,
				CheckoutId: checkoutId,
				Product:    &entities.OrderProduct{Name: li.Name, Price: li.Price, Image: li.Image},
			}
		}),
	}
	return
}

func (ors *OrderService) replay(ctx context.Context, sess entities.Session, checkoutId uuid.UUID) (res entities.CheckoutResult, replayed bool, err error) {
	existing, err := ors.or.GetByCheckout(ctx, checkoutId)
	if err != nil || len(existing) == 0 {
		return
	}
	if existing[0].UserId != sess.UserId {
		err = errors.Wrap(models.ErrValidation, "idempotency key already used")
		return
	}
	log.WithField("checkout", checkoutId).Info("Checkout: replaying stored checkout")
	ors.clearCart(ctx, sess)
	res = entities.CheckoutResult{
		CheckoutId: checkoutId,
		Orders:     ordersFromDb(existing),
		Replayed:   true,
	}
	replayed = true
	return
}

// the orders are committed at this point, so a failed clear is only logged
func (ors *OrderService) clearCart(ctx context.Context, sess entities.Session) {
	if err := ors.cr.DeleteCart(ctx, sess.CartKey()); err != nil {
		log.WithError(err).WithField("session", sess.Id).Warn("Checkout: could not clear cart")
	}
}

func (ors *OrderService) publish(ctx context.Context, event entities.OrderPlaced) {
	if ors.events == nil {
		return
	}
	if err := ors.events.Dispatch(ctx, event); err != nil {
		log.WithError(err).WithField("checkout", event.CheckoutId).Warn("Checkout: event dispatch failed")
	}
}

func (ors *OrderService) ListForUser(ctx context.Context, sess entities.Session) (orders []entities.Order, err error) {
	if sess.UserId == uuid.Nil {
		err = models.ErrUnauthenticated
		return
	}
	rows, err := ors.or.ListByUser(ctx, sess.UserId)
	if err != nil {
		return
	}
	orders = ordersFromDb(rows)
	return
}

func (ors *OrderService) ListAll(ctx context.Context, actor models.UserProfile) (orders []entities.Order, err error) {
	if ors.authz == nil || !ors.authz.IsAdmin(actor) {
		err = models.ErrUnauthorized
		return
	}
	rows, err := ors.or.ListAll(ctx)
	if err != nil {
		return
	}
	orders = ordersFromDb(rows)
	return
}

func ordersFromDb(rows []models.OrderWithProduct_db) []entities.Order {
	return lo.Map(rows, func(r models.OrderWithProduct_db, _ int) entities.Order {
		return entities.OrderFromDb(r)
	})
}
