package http

import (
	"net/http"
	"strconv"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/service"

	"github.com/gorilla/mux"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	OwnerID  int64               `json:"owner_id"`
	Item     domain.ItemSnapshot `json:"item"`
	StartAt  time.Time           `json:"start_at"`
	EndAt    time.Time           `json:"end_at"`
	Deposit  int64               `json:"deposit_cents"`
	Fee      int64               `json:"fee_cents"`
	Currency string              `json:"currency"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decode(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	order, err := h.orders.CreateOrder(r.Context(), actor, service.CreateOrderInput{
		RenterID: actor.UserID,
		OwnerID:  req.OwnerID,
		Item:     req.Item,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
		Deposit:  req.Deposit,
		Fee:      req.Fee,
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, order)
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.CompleteOrder(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, order)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.orders.CancelOrder(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOwner := q.Get("role") == "owner"
	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))
	orders, total, err := h.orders.ListOrders(r.Context(), actorFrom(r), asOwner, q.Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, pageData{Items: orders, Total: total, Page: page})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		writeError(w, domain.NewValidationError(name, "invalid id"))
		return 0, false
	}
	return id, true
}

func pagination(page, pageSize string) (int32, int32) {
	p, _ := strconv.ParseInt(page, 10, 32)
	ps, _ := strconv.ParseInt(pageSize, 10, 32)
	if p < 1 {
		p = 1
	}
	if ps < 1 {
		ps = 20
	}
	return int32(p), int32(ps)
}
