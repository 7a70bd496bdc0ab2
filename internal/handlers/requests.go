package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/models"
	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/validation"
)

func (h *StudentHandler) RequestForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "request_project.html", nil)
}

func (h *StudentHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.redirectWithFlash(w, r, "/request_project", "error", "Upload failed. Files are too large.")
		return
	}

	form := requestForm{
		Title:            strings.TrimSpace(r.FormValue("title")),
		Description:      r.FormValue("description"),
		ProblemStatement: r.FormValue("problem_statement"),
		Objectives:       r.FormValue("objectives"),
		Outcomes:         r.FormValue("outcomes"),
		OutputIdea:       r.FormValue("output_idea"),
	}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, "/request_project", "error", strings.Join(msgs, " "))
		return
	}

	student, _ := h.studentName(r)
	req := &models.ProjectRequest{
		StudentUsername:  student,
		Title:            form.Title,
		Description:      form.Description,
		ProblemStatement: form.ProblemStatement,
		Objectives:       form.Objectives,
		Outcomes:         form.Outcomes,
		OutputIdea:       form.OutputIdea,
	}

	var err error
	req.Photos, err = h.Uploads.SaveAll(r.MultipartForm.File["photos"], true)
	if err != nil {
		slog.Error("Failed to save request photos", "error", err)
		h.Uploads.Remove(req.Photos...)
		h.redirectWithFlash(w, r, "/request_project", "error", "Error saving photos.")
		return
	}
	req.Videos, err = h.Uploads.SaveAll(r.MultipartForm.File["videos"], false)
	if err != nil {
		slog.Error("Failed to save request videos", "error", err)
		h.Uploads.Remove(append(req.Photos, req.Videos...)...)
		h.redirectWithFlash(w, r, "/request_project", "error", "Error saving videos.")
		return
	}

	id, err := h.Store.CreateRequest(req)
	if err != nil {
		slog.Error("Failed to create request", "student", student, "error", err)
		h.Uploads.Remove(append(req.Photos, req.Videos...)...)
		h.redirectWithFlash(w, r, "/request_project", "error", "Error saving request.")
		return
	}

	slog.Info("Project requested", "request_id", id, "student", student)
	h.redirectWithFlash(w, r, "/my_requests", "success", "Request submitted. The admin will quote a price.")
}

func (h *StudentHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	student, _ := h.studentName(r)
	requests, err := h.Store.ListRequestsByStudent(student)
	if err != nil {
		handleDBError(w, err)
		return
	}

	h.render(w, r, "my_requests.html", map[string]interface{}{
		"Requests": requests,
	})
}

// ownRequest loads a request and checks it belongs to the logged in student.
func (h *StudentHandler) ownRequest(r *http.Request) (*models.ProjectRequest, error) {
	id, ok := pathID(r, "id")
	if !ok {
		return nil, store.ErrNotFound
	}
	req, err := h.Store.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if student, _ := h.studentName(r); req.StudentUsername != student {
		return nil, store.ErrNotFound
	}
	return req, nil
}

func (h *StudentHandler) SubmitRequestPayment(w http.ResponseWriter, r *http.Request) {
	req, err := h.ownRequest(r)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/my_requests", "error", "Request not found.")
		return
	}
	if err != nil {
		handleDBError(w, err)
		return
	}

	form := paymentForm{TransactionID: strings.TrimSpace(r.FormValue("transaction_id"))}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, "/my_requests", "error", msgs[0])
		return
	}

	err = h.Store.SubmitRequestPayment(req.ID, form.TransactionID)
	if errors.Is(err, store.ErrInvalidTransition) {
		h.redirectWithFlash(w, r, "/my_requests", "error", "This request is not awaiting payment.")
		return
	}
	if err != nil {
		slog.Error("Failed to record request payment", "request_id", req.ID, "error", err)
		h.redirectWithFlash(w, r, "/my_requests", "error", "Error recording payment. Please try again.")
		return
	}

	slog.Info("Request payment submitted", "request_id", req.ID, "student", req.StudentUsername)
	h.redirectWithFlash(w, r, "/my_requests", "success", "Payment submitted.")
}

// DownloadRequest serves the delivered file of a completed request to its owner.
func (h *StudentHandler) DownloadRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.ownRequest(r)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		handleDBError(w, err)
		return
	}
	if req == nil || !req.Downloadable() {
		http.Error(w, "Access Denied: Custom request is not completed or file is missing.", http.StatusForbidden)
		return
	}

	h.serveUpload(w, r, req.FinalFile,
		"Error: The file exists in our records but was not found on the server. Please contact support.")
}
