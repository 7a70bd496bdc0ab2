package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/models"
	"github.com/Rakesh-6305/project-store/internal/payment"
	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/validation"
)

type StudentHandler struct {
	*Deps
}

func paymentNote(p *models.Project) string {
	return fmt.Sprintf("Project #%d %s", p.ID, p.Title)
}

func (h *StudentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	project, err := h.Store.GetProjectByID(id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/", "error", "Project not found.")
		return
	}
	if err != nil {
		handleDBError(w, err)
		return
	}

	student, _ := h.studentName(r)
	data := map[string]interface{}{
		"Project": project,
		"Amount":  payment.FormatAmount(project.Price),
		"UPIID":   h.UPI.ID,
	}
	if order, err := h.Store.GetOrderFor(id, student); err == nil {
		data["Order"] = order
	}
	// upi:// is not in html/template's safe scheme list; the link is built from config and the price only.
	if link, err := h.UPI.Link(project.Price, paymentNote(project)); err == nil {
		data["UPILink"] = template.URL(link)
	}

	h.render(w, r, "checkout.html", data)
}

func (h *StudentHandler) CheckoutQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	project, err := h.Store.GetProjectByID(id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Error loading project", http.StatusInternalServerError)
		return
	}

	png, err := h.UPI.QRCode(project.Price, paymentNote(project))
	if errors.Is(err, payment.ErrNoPayee) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("Failed to render payment QR", "project_id", id, "error", err)
		http.Error(w, "Error rendering QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (h *StudentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	checkoutURL := fmt.Sprintf("/checkout/%d", id)

	form := paymentForm{TransactionID: strings.TrimSpace(r.FormValue("transaction_id"))}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, checkoutURL, "error", msgs[0])
		return
	}

	if _, err := h.Store.GetProjectByID(id); errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/", "error", "Project not found.")
		return
	} else if err != nil {
		handleDBError(w, err)
		return
	}

	student, _ := h.studentName(r)
	if err := h.Store.SubmitOrderPayment(id, student, form.TransactionID); err != nil {
		slog.Error("Failed to record payment", "project_id", id, "student", student, "error", err)
		h.redirectWithFlash(w, r, checkoutURL, "error", "Error recording payment. Please try again.")
		return
	}

	slog.Info("Payment submitted", "project_id", id, "student", student)
	h.redirectWithFlash(w, r, "/my_orders", "success", "Payment submitted. Your download unlocks once the admin confirms it.")
}

func (h *StudentHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	student, _ := h.studentName(r)
	orders, err := h.Store.ListOrdersByStudent(student)
	if err != nil {
		handleDBError(w, err)
		return
	}

	h.render(w, r, "my_orders.html", map[string]interface{}{
		"Orders": orders,
	})
}

// Download serves the purchased project file once the student's order is confirmed.
func (h *StudentHandler) Download(w http.ResponseWriter, r *http.Request) {
	const denied = "Access Denied: Payment not confirmed or project not found."

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, denied, http.StatusForbidden)
		return
	}

	student, _ := h.studentName(r)
	order, err := h.Store.GetOrderFor(id, student)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		handleDBError(w, err)
		return
	}
	if order == nil || order.Status != models.OrderConfirmed {
		http.Error(w, denied, http.StatusForbidden)
		return
	}

	project, err := h.Store.GetProjectByID(id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		handleDBError(w, err)
		return
	}
	if project == nil || project.ProjectFile == "" {
		http.Error(w, "File not found: The project file has not been uploaded for this project yet.", http.StatusNotFound)
		return
	}

	h.serveUpload(w, r, project.ProjectFile,
		"Error: Project file record exists but the file is missing from the server. Please notify the administrator.")
}

// serveUpload sends a stored upload as an attachment, or missingMsg as a 404.
func (d *Deps) serveUpload(w http.ResponseWriter, r *http.Request, dbPath, missingMsg string) {
	if !d.Uploads.Exists(dbPath) {
		slog.Warn("Upload missing from disk", "path", dbPath)
		http.Error(w, missingMsg, http.StatusNotFound)
		return
	}
	p, err := d.Uploads.Resolve(dbPath)
	if err != nil {
		http.Error(w, missingMsg, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.TrimPrefix(dbPath, "uploads/")))
	http.ServeFile(w, r, p)
}
