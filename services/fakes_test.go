package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errBackend = models.NewStoreError("fake", errors.New("connection reset by peer"))

type fakeProducts struct {
	rows      map[uuid.UUID]models.Product_db
	lastQuery models.ProductFilter
	fail      bool
}

func newFakeProducts(prods ...models.Product_db) *fakeProducts {
	f := &fakeProducts{rows: map[uuid.UUID]models.Product_db{}}
	for _, p := range prods {
		f.rows[p.Id] = p
	}
	return f
}

func (f *fakeProducts) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product_db, error) {
	f.lastQuery = filter
	if f.fail {
		return nil, errBackend
	}
	res := []models.Product_db{}
	for _, p := range f.rows {
		if filter.Category != "" && !strings.EqualFold(p.Category.String, filter.Category) {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), s) && !strings.Contains(strings.ToLower(p.Description.String), s) {
				continue
			}
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

func (f *fakeProducts) GetProductById(_ context.Context, id uuid.UUID) (models.Product_db, bool, error) {
	if f.fail {
		return models.Product_db{}, false, errBackend
	}
	p, ok := f.rows[id]
	return p, ok, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, p models.Product_db) error {
	if f.fail {
		return errBackend
	}
	f.rows[p.Id] = p
	return nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, p models.Product_db) (bool, error) {
	if f.fail {
		return false, errBackend
	}
	if _, ok := f.rows[p.Id]; !ok {
		return false, nil
	}
	f.rows[p.Id] = p
	return true, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id uuid.UUID) (bool, error) {
	if f.fail {
		return false, errBackend
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type fakeCarts struct {
	carts     map[string]entities.Cart
	failGet   bool
	failClear bool
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]entities.Cart{}}
}

func (f *fakeCarts) SetCart(_ context.Context, key string, cart entities.Cart) error {
	if cart.IsEmpty() {
		delete(f.carts, key)
		return nil
	}
	items := make([]entities.CartLineItem, len(cart.Items))
	copy(items, cart.Items)
	f.carts[key] = entities.Cart{Items: items}
	return nil
}

func (f *fakeCarts) GetCart(_ context.Context, key string) (entities.Cart, error) {
	if f.failGet {
		return entities.Cart{}, errBackend
	}
	c := f.carts[key]
	items := make([]entities.CartLineItem, len(c.Items))
	copy(items, c.Items)
	return entities.Cart{Items: items}, nil
}

func (f *fakeCarts) DeleteCart(_ context.Context, key string) error {
	if f.failClear {
		return errBackend
	}
	delete(f.carts, key)
	return nil
}

type fakeOrders struct {
	rows        []models.Order_db
	products    *fakeProducts
	insertCalls int
	failInsert  bool
}

func (f *fakeOrders) InsertBatch(_ context.Context, checkoutId uuid.UUID, orders []models.Order_db) (bool, error) {
	f.insertCalls++
	if f.failInsert {
		return false, models.NewStoreError("InsertBatch", errors.New(`new row for relation "orders" violates check constraint`))
	}
	for _, r := range f.rows {
		if r.CheckoutId.Valid && r.CheckoutId.UUID == checkoutId {
			return false, nil
		}
	}
	f.rows = append(f.rows, orders...)
	return true, nil
}

func (f *fakeOrders) join(rows []models.Order_db) []models.OrderWithProduct_db {
	res := []models.OrderWithProduct_db{}
	for _, r := range rows {
		o := models.OrderWithProduct_db{Order_db: r}
		if f.products != nil {
			if p, ok := f.products.rows[r.ProductId]; ok {
				o.ProductName.String, o.ProductName.Valid = p.Name, true
				o.ProductPrice.Decimal, o.ProductPrice.Valid = p.Price, true
				o.ProductImage = p.Image
			}
		}
		res = append(res, o)
	}
	return res
}

func (f *fakeOrders) GetByCheckout(_ context.Context, checkoutId uuid.UUID) ([]models.OrderWithProduct_db, error) {
	var match []models.Order_db
	for _, r := range f.rows {
		if r.CheckoutId.Valid && r.CheckoutId.UUID == checkoutId {
			match = append(match, r)
		}
	}
	return f.join(match), nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userId uuid.UUID) ([]models.OrderWithProduct_db, error) {
	var match []models.Order_db
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserId == userId {
			match = append(match, f.rows[i])
		}
	}
	return f.join(match), nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]models.OrderWithProduct_db, error) {
	return f.join(f.rows), nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []repository.Event
	fail   bool
}

func (f *fakeEvents) Dispatch(_ context.Context, event repository.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) Close() error {
	return nil
}

type fakeUsers struct {
	profiles map[uuid.UUID]models.UserProfile
	auth     map[string]models.AuthUser_db
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		profiles: map[uuid.UUID]models.UserProfile{},
		auth:     map[string]models.AuthUser_db{},
	}
}

func (f *fakeUsers) find(match func(models.UserProfile) bool) (models.UserProfile, bool, error) {
	for _, p := range f.profiles {
		if match(p) {
			return p, true, nil
		}
	}
	return models.UserProfile{}, false, nil
}

func (f *fakeUsers) GetProfileById(_ context.Context, id uuid.UUID) (models.UserProfile, bool, error) {
	return f.find(func(p models.UserProfile) bool { return p.Id == id })
}

func (f *fakeUsers) GetProfileByUsername(_ context.Context, username string) (models.UserProfile, bool, error) {
	return f.find(func(p models.UserProfile) bool { return p.Username == username })
}

func (f *fakeUsers) GetProfileByEmail(_ context.Context, email string) (models.UserProfile, bool, error) {
	return f.find(func(p models.UserProfile) bool { return p.Email == email })
}

func (f *fakeUsers) GetAuthUserByEmail(_ context.Context, email string) (models.AuthUser_db, bool, error) {
	a, ok := f.auth[email]
	return a, ok, nil
}

func (f *fakeUsers) AddNewUser(_ context.Context, profile models.UserProfile, hash string) error {
	for _, p := range f.profiles {
		if p.Username == profile.Username || p.Email == profile.Email {
			return repository.ErrUserExists
		}
	}
	f.profiles[profile.Id] = profile
	f.auth[profile.Email] = models.AuthUser_db{Id: profile.Id, Email: profile.Email, PasswordHash: hash}
	return nil
}

func (f *fakeUsers) EncryptPassword(pass string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	return string(b), err
}

func (f *fakeUsers) VerifyPassword(hash, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}

type fakeSessions struct {
	sessions map[string]entities.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]entities.Session{}}
}

func (f *fakeSessions) CreateSession(_ context.Context, userId uuid.UUID, email string) (string, error) {
	id := uuid.NewString()
	f.sessions[id] = entities.Session{Id: id, UserId: userId, Email: email}
	return id, nil
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (entities.Session, bool, error) {
	s, ok := f.sessions[id]
	return s, ok, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) RefreshSession(_ context.Context, id string) (bool, error) {
	_, ok := f.sessions[id]
	return ok, nil
}
