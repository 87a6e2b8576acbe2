package http

import (
	"net/http"

	"rentiva-backend/internal/security"
	"rentiva-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services bundles everything the API surface needs.
type Services struct {
	Orders        service.OrderService
	Extensions    service.ExtensionService
	Disputes      service.DisputeService
	Ledger        service.LedgerService
	Notifications service.NotificationService
}

func NewRouter(svcs Services, tm security.TokenManager) *mux.Router {
	orderH := NewOrderHandler(svcs.Orders)
	extH := NewExtensionHandler(svcs.Extensions)
	dispH := NewDisputeHandler(svcs.Disputes)
	walletH := NewWalletHandler(svcs.Ledger)
	noteH := NewNotificationHandler(svcs.Notifications)

	router := mux.NewRouter()
	router.Use(recoveryMiddleware, loggingMiddleware)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(tm))

	api.HandleFunc("/orders", orderH.Create).Methods(http.MethodPost)
	api.HandleFunc("/orders", orderH.List).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}", orderH.Get).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}/complete", orderH.Complete).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/cancel", orderH.Cancel).Methods(http.MethodPost)

	api.HandleFunc("/orders/{id:[0-9]+}/extensions", extH.Request).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/extensions", extH.List).Methods(http.MethodGet)
	api.HandleFunc("/extensions/{id:[0-9]+}/approve", extH.Approve).Methods(http.MethodPost)
	api.HandleFunc("/extensions/{id:[0-9]+}/reject", extH.Reject).Methods(http.MethodPost)

	api.HandleFunc("/orders/{id:[0-9]+}/disputes", dispH.Open).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id:[0-9]+}/resolve", dispH.Resolve).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id:[0-9]+}/reject", dispH.Reject).Methods(http.MethodPost)

	api.HandleFunc("/wallets/{userId:[0-9]+}", walletH.Get).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{userId:[0-9]+}/transactions", walletH.ListTransactions).Methods(http.MethodGet)

	api.HandleFunc("/notifications", noteH.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", noteH.MarkAsRead).Methods(http.MethodPost)

	return router
}
