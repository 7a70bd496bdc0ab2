package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rakesh-6305/project-store/internal/store"
)

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListOrders()
	if err != nil {
		slog.Error("Failed to list orders", "error", err)
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "admin_orders.html", map[string]interface{}{
		"Orders": orders,
	})
}

func (h *AdminHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	err := h.Store.ConfirmOrder(id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/admin_orders", "error", "Order not found.")
		return
	}
	if err != nil {
		slog.Error("Failed to confirm order", "order_id", id, "error", err)
		http.Error(w, "Error updating status", http.StatusInternalServerError)
		return
	}

	slog.Info("Order confirmed", "order_id", id)
	h.redirectWithFlash(w, r, "/admin_orders", "success", "Payment confirmed!")
}
