package http

import (
	"net/http"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/service"
)

type WalletHandler struct {
	ledger service.LedgerService
}

func NewWalletHandler(ledger service.LedgerService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// authorize allows wallet reads only for the wallet owner or a
// moderator.
func (h *WalletHandler) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return 0, false
	}
	actor := actorFrom(r)
	if actor.UserID != userID && !actor.Moderator() {
		writeError(w, domain.NewUnauthorizedError("cannot read another user's wallet"))
		return 0, false
	}
	return userID, true
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	wallet, err := h.ledger.GetWallet(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, wallet)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))
	txs, total, err := h.ledger.ListTransactions(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, pageData{Items: txs, Total: total, Page: page})
}
