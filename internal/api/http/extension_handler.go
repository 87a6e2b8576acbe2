package http

import (
	"net/http"

	"rentiva-backend/internal/service"
)

type ExtensionHandler struct {
	extensions service.ExtensionService
}

func NewExtensionHandler(extensions service.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{extensions: extensions}
}

type requestExtensionRequest struct {
	Duration int32  `json:"duration"`
	Notes    string `json:"notes"`
}

func (h *ExtensionHandler) Request(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req requestExtensionRequest
	if !decode(w, r, &req) {
		return
	}
	ext, err := h.extensions.RequestExtension(r.Context(), actorFrom(r), orderID, req.Duration, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, ext)
}

func (h *ExtensionHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	exts, err := h.extensions.ListExtensions(r.Context(), actorFrom(r), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, exts)
}

func (h *ExtensionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ext, err := h.extensions.ApproveExtension(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, ext)
}

type rejectExtensionRequest struct {
	Reason string `json:"reason"`
}

func (h *ExtensionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rejectExtensionRequest
	if !decode(w, r, &req) {
		return
	}
	ext, err := h.extensions.RejectExtension(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, ext)
}
