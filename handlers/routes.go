package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(ha *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(ha.ErrorHandleMiddleware)
	router.Use(ha.AccessLogMiddleware)
	subAuth := router.NewRoute().Subrouter()
	subAuth.Use(ha.AuthMiddleware)
	subAdmin := router.PathPrefix("/admin").Subrouter()
	subAdmin.Use(ha.AuthMiddleware)
	subAdmin.Use(ha.AdminMiddleware)

	router.HandleFunc("/", ha.Welcome).Methods(http.MethodGet)
	router.HandleFunc("/users/signup", ha.Signup).Methods(http.MethodPost)
	router.HandleFunc("/users/signin", ha.Signin).Methods(http.MethodPost)
	subAuth.HandleFunc("/users/refresh", ha.Refresh).Methods(http.MethodPost)
	subAuth.HandleFunc("/users/logout", ha.Logout).Methods(http.MethodPost)
	subAuth.HandleFunc("/users/me", ha.Me).Methods(http.MethodGet)

	router.HandleFunc("/products", ha.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/featured", ha.FeaturedProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}", ha.GetProduct).Methods(http.MethodGet)

	subAuth.HandleFunc("/cart", ha.GetCart).Methods(http.MethodGet)
	subAuth.HandleFunc("/cart", ha.AddToCart).Methods(http.MethodPost)
	subAuth.HandleFunc("/cart", ha.UpdateCart).Methods(http.MethodPut)
	subAuth.HandleFunc("/cart", ha.ClearCart).Methods(http.MethodDelete)
	subAuth.HandleFunc("/cart/checkout", ha.Checkout).Methods(http.MethodPost)
	subAuth.HandleFunc("/cart/{id}", ha.RemoveFromCart).Methods(http.MethodDelete)
	subAuth.HandleFunc("/orders", ha.GetOrders).Methods(http.MethodGet)

	subAdmin.HandleFunc("/products", ha.AdminListProducts).Methods(http.MethodGet)
	subAdmin.HandleFunc("/products", ha.AdminCreateProduct).Methods(http.MethodPost)
	subAdmin.HandleFunc("/products/export", ha.AdminExportProducts).Methods(http.MethodGet)
	subAdmin.HandleFunc("/products/{id}", ha.AdminUpdateProduct).Methods(http.MethodPut)
	subAdmin.HandleFunc("/products/{id}", ha.AdminDeleteProduct).Methods(http.MethodDelete)
	subAdmin.HandleFunc("/orders", ha.AdminListOrders).Methods(http.MethodGet)

	return router
}
