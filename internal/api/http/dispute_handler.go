package http

import (
	"net/http"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/service"
)

type DisputeHandler struct {
	disputes service.DisputeService
}

func NewDisputeHandler(disputes service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

type openDisputeRequest struct {
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

func (h *DisputeHandler) Open(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req openDisputeRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.disputes.OpenDispute(r.Context(), actorFrom(r), orderID, req.Reason, req.Description, req.Evidence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, d)
}

type resolveDisputeRequest struct {
	Decision         string `json:"decision"`
	Notes            string `json:"notes"`
	RefundTarget     string `json:"refund_target"`
	RefundPercentage int32  `json:"refund_percentage"`
}

func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.disputes.ResolveDispute(r.Context(), actorFrom(r), id, service.ResolveDisputeInput{
		Decision:         domain.DisputeDecision(req.Decision),
		Notes:            req.Notes,
		RefundTarget:     domain.RefundTarget(req.RefundTarget),
		RefundPercentage: req.RefundPercentage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, d)
}

type rejectDisputeRequest struct {
	Notes string `json:"notes"`
}

func (h *DisputeHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rejectDisputeRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.disputes.RejectDispute(r.Context(), actorFrom(r), id, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, d)
}
