package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"combatStore/entities"
	"combatStore/models"
	"combatStore/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const sessionCookie = "sessionId"

type Handler struct {
	ids   services.IdentityService
	cat   services.CatalogService
	cs    services.CartService
	ors   services.OrderService
	adm   services.AdminCatalogService
	authz services.Authorizer

	sessionTTL time.Duration
}

type HandlerParams struct {
	IdService      services.IdentityService
	CatalogService services.CatalogService
	CrtService     services.CartService
	OrdService     services.OrderService
	AdminService   services.AdminCatalogService
	Authorizer     services.Authorizer
	SessionTTL     time.Duration
}

func NewHandler(params HandlerParams) *Handler {
	authz := params.Authorizer
	if authz == nil {
		authz = services.RoleAuthorizer{}
	}
	return &Handler{
		ids:        params.IdService,
		cat:        params.CatalogService,
		cs:         params.CrtService,
		ors:        params.OrdService,
		adm:        params.AdminService,
		authz:      authz,
		sessionTTL: params.SessionTTL,
	}
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	name := "guest"
	if c, err := r.Cookie(sessionCookie); err == nil {
		sess, err := h.ids.CurrentUser(r.Context(), c.Value)
		if err == nil && sess != nil {
			if profile, err := h.ids.Profile(r.Context(), sess.UserId); err == nil {
				name = profile.Username
			}
		}
	}
	w.Write([]byte("Hello, " + name + "!"))
}

//user

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	data := models.SignupData{}
	if !decodeBody(w, r, &data) {
		return
	}
	profile, err := h.ids.SignUp(r.Context(), data)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if !decodeBody(w, r, &creds) {
		return
	}
	profile, sessionId, err := h.ids.SignIn(r.Context(), creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.setSessionCookie(w, sessionId)
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := h.ids.Refresh(r.Context(), sess.Id); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	h.setSessionCookie(w, sess.Id)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.ids.Logout(r.Context(), sessionFrom(r)); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ids.Profile(r.Context(), sessionFrom(r).UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionId,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// product

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prods, err := h.cat.Browse(r.Context(), q.Get("category"), q.Get("search"))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	prods, err := h.cat.Featured(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	prod, err := h.cat.GetById(r.Context(), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

// cart

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cs.GetCart(r.Context(), sessionFrom(r))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Response())
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req := entities.CartRequest{}
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.cs.AddItem(r.Context(), sessionFrom(r), req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Response())
}

func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	req := entities.CartRequest{}
	if !decodeBody(w, r, &req) {
		return
	}
	cart, err := h.cs.UpdateQuantity(r.Context(), sessionFrom(r), req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Response())
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	cart, err := h.cs.RemoveItem(r.Context(), sessionFrom(r), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Response())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cs.Clear(r.Context(), sessionFrom(r)); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// orders

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	res, err := h.ors.Checkout(r.Context(), sessionFrom(r), key)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ors.ListForUser(r.Context(), sessionFrom(r))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// admin

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	prods, err := h.adm.List(r.Context(), profileFrom(r))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	fields := models.ProductFields{}
	if !decodeBody(w, r, &fields) {
		return
	}
	prods, err := h.adm.Create(r.Context(), profileFrom(r), fields)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prods)
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	fields := models.ProductFields{}
	if !decodeBody(w, r, &fields) {
		return
	}
	prods, err := h.adm.Update(r.Context(), profileFrom(r), id, fields)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	prods, err := h.adm.Delete(r.Context(), profileFrom(r), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) AdminExportProducts(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.adm.Export(r.Context(), profileFrom(r), &buf); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Warn("AdminExportProducts: write response")
	}
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ors.ListAll(r.Context(), profileFrom(r))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.WithError(err).Debug("Unmarshal")
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

func pathId(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id must be a uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.WithError(err).Error("Marshal")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonData)
}

func WriteErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, strings.TrimSuffix(err.Error(), ": "+models.ErrValidation.Error()), http.StatusBadRequest)
	case errors.Is(err, models.ErrUnauthenticated):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrStore):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		log.WithError(err).Error("unhandled error")
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
