package repository

import (
	"context"
	"errors"

	"combatStore/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

type OrderRepository interface {
	InsertBatch(ctx context.Context, checkoutId uuid.UUID, orders []models.Order_db) (inserted bool, err error)
	GetByCheckout(ctx context.Context, checkoutId uuid.UUID) (orders []models.OrderWithProduct_db, err error)
	ListByUser(ctx context.Context, userId uuid.UUID) (orders []models.OrderWithProduct_db, err error)
	ListAll(ctx context.Context) (orders []models.OrderWithProduct_db, err error)
}

type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepository(conn *sqlx.DB) (OrderRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &OrderRepo{
		db: conn,
	}, nil
}

const orderSelect = `SELECT o.id, o.user_id, o.product_id, o.quantity, o.order_date, o.checkout_id,
	p.name AS product_name, p.price AS product_price, p.image AS product_image
	FROM orders o LEFT JOIN products p ON p.id = o.product_id`

const checkoutLockQuery = "SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))"

// InsertBatch writes every row or none. When rows for checkoutId already exist nothing is
// written and inserted is false.
func (o *OrderRepo) InsertBatch(ctx context.Context, checkoutId uuid.UUID, orders []models.Order_db) (inserted bool, err error) {
	if len(orders) == 0 {
		return false, nil
	}
	tx, err := o.db.BeginTxx(ctx, nil)
	if err != nil {
		log.WithError(err).Error("InsertBatch: begin")
		return false, models.NewStoreError("InsertBatch", err)
	}
	defer func() {
		if err != nil || !inserted {
			_ = tx.Rollback()
		}
	}()

	// serializes transactions that share a checkout id until commit or rollback
	_, err = tx.ExecContext(ctx, checkoutLockQuery, checkoutId)
	if err != nil {
		log.WithError(err).Error("InsertBatch: lock checkout")
		return false, models.NewStoreError("InsertBatch", err)
	}

	var seen bool
	err = tx.GetContext(ctx, &seen, "SELECT EXISTS (SELECT 1 FROM orders WHERE checkout_id = $1)", checkoutId)
	if err != nil {
		log.WithError(err).Error("InsertBatch: lookup checkout")
		return false, models.NewStoreError("InsertBatch", err)
	}
	if seen {
		log.WithField("checkout", checkoutId).Info("InsertBatch: checkout already stored")
		return false, nil
	}

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO orders (id, user_id, product_id, quantity, order_date, checkout_id)
		VALUES (:id, :user_id, :product_id, :quantity, :order_date, :checkout_id)`, orders)
	if err != nil {
		log.WithError(err).Error("InsertBatch")
		return false, models.NewStoreError("InsertBatch", err)
	}
	if err = tx.Commit(); err != nil {
		log.WithError(err).Error("InsertBatch: commit")
		return false, models.NewStoreError("InsertBatch", err)
	}
	return true, nil
}

func (o *OrderRepo) selectOrders(ctx context.Context, op, query string, args ...any) (orders []models.OrderWithProduct_db, err error) {
	orders = []models.OrderWithProduct_db{}
	err = o.db.SelectContext(ctx, &orders, query, args...)
	if err != nil {
		log.WithError(err).Error(op)
		err = models.NewStoreError(op, err)
	}
	return
}

func (o *OrderRepo) GetByCheckout(ctx context.Context, checkoutId uuid.UUID) ([]models.OrderWithProduct_db, error) {
	return o.selectOrders(ctx, "GetByCheckout", orderSelect+" WHERE o.checkout_id = $1 ORDER BY o.order_date, o.id", checkoutId)
}

func (o *OrderRepo) ListByUser(ctx context.Context, userId uuid.UUID) ([]models.OrderWithProduct_db, error) {
	return o.selectOrders(ctx, "ListByUser", orderSelect+" WHERE o.user_id = $1 ORDER BY o.order_date DESC", userId)
}

func (o *OrderRepo) ListAll(ctx context.Context) ([]models.OrderWithProduct_db, error) {
	return o.selectOrders(ctx, "ListAll", orderSelect+" ORDER BY o.order_date DESC")
}
