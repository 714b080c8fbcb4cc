package routes

import (
	"net/http"

	"salonmenu/internal/handlers"
	"salonmenu/internal/middleware"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Menu   *handlers.MenuHandler
	Owner  *handlers.OwnerHandler
	Health *handlers.HealthHandler
}

func InitRoutes(router *mux.Router, h Handlers, ownerScope mux.MiddlewareFunc) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	// --- Публичные маршруты ---
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/users", h.Owner.Register).Methods(http.MethodPost)

	users := router.PathPrefix("/users/{ownerId}").Subrouter()
	users.Use(ownerScope)
	users.HandleFunc("", h.Owner.Get).Methods(http.MethodGet)

	// --- Меню владельца ---
	menu := router.PathPrefix("/menu/{ownerId}").Subrouter()
	menu.Use(ownerScope)

	menu.HandleFunc("", h.Menu.GetMenu).Methods(http.MethodGet)
	menu.HandleFunc("/sections", h.Menu.CreateSection).Methods(http.MethodPost)
	menu.HandleFunc("/sections/order", h.Menu.ReorderSections).Methods(http.MethodPut)
	menu.HandleFunc("/sections/{sectionId}", h.Menu.DeleteSection).Methods(http.MethodDelete)

	menu.HandleFunc("/sections/{sectionId}/services", h.Menu.CreateService).Methods(http.MethodPost)
	menu.HandleFunc("/sections/{sectionId}/services/order", h.Menu.ReorderServices).Methods(http.MethodPut)
	menu.HandleFunc("/sections/{sectionId}/services/{id}", h.Menu.DeleteService).Methods(http.MethodDelete)

	menu.HandleFunc("/sections/{sectionId}/packages", h.Menu.CreatePackage).Methods(http.MethodPost)
	menu.HandleFunc("/sections/{sectionId}/packages/order", h.Menu.ReorderPackages).Methods(http.MethodPut)
	menu.HandleFunc("/sections/{sectionId}/packages/{id}", h.Menu.DeletePackage).Methods(http.MethodDelete)

	// --- Пакеты по разделу (владелец берётся из раздела) ---
	sections := router.PathPrefix("/sections/{sectionId}").Subrouter()
	sections.Use(ownerScope)
	sections.HandleFunc("/packages", h.Menu.CreatePackage).Methods(http.MethodPost)
}
