package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/validation"
)

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListAllRequests()
	if err != nil {
		slog.Error("Failed to list requests", "error", err)
		http.Error(w, "Error fetching requests", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "admin_requests.html", map[string]interface{}{
		"Requests": requests,
	})
}

func (h *AdminHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	form := priceForm{Price: r.FormValue("price")}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, "/admin_requests", "error", msgs[0])
		return
	}
	price, err := parsePrice(form.Price)
	if err != nil {
		h.redirectWithFlash(w, r, "/admin_requests", "error", invalidPriceMsg)
		return
	}

	switch err := h.Store.SetRequestPrice(id, price); {
	case errors.Is(err, store.ErrNotFound):
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Request not found.")
	case errors.Is(err, store.ErrInvalidTransition):
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Completed requests cannot be re-priced.")
	case err != nil:
		slog.Error("Failed to set request price", "request_id", id, "error", err)
		http.Error(w, "Error updating request", http.StatusInternalServerError)
	default:
		slog.Info("Request priced", "request_id", id, "price", price)
		h.redirectWithFlash(w, r, "/admin_requests", "success", "Price set.")
	}
}

func (h *AdminHandler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Upload failed. The file is too large.")
		return
	}
	files := r.MultipartForm.File["final_file"]
	if len(files) == 0 || files[0].Filename == "" {
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Choose the final project file to deliver.")
		return
	}

	_, err := h.Store.GetRequest(id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Request not found.")
		return
	}
	if err != nil {
		handleDBError(w, err)
		return
	}

	finalFile, err := h.Uploads.Save(files[0])
	if err != nil {
		slog.Error("Failed to save final file", "request_id", id, "error", err)
		h.redirectWithFlash(w, r, "/admin_requests", "error", "Error saving file.")
		return
	}

	if err := h.Store.CompleteRequest(id, finalFile); err != nil {
		slog.Error("Failed to complete request", "request_id", id, "error", err)
		h.Uploads.Remove(finalFile)
		http.Error(w, "Error updating request", http.StatusInternalServerError)
		return
	}

	slog.Info("Request completed", "request_id", id, "file", finalFile)
	h.redirectWithFlash(w, r, "/admin_requests", "success", "Request delivered.")
}
