package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/models"
	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/validation"
)

type AdminHandler struct {
	*Deps
}

// parseMultipart bounds the request body and parses the upload form.
func (d *Deps) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if d.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
	}
	return r.ParseMultipartForm(32 << 20)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats()
	if err != nil {
		slog.Error("Failed to load dashboard stats", "error", err)
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "admin_dashboard.html", map[string]interface{}{
		"Stats": stats,
	})
}

func (h *AdminHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.redirectWithFlash(w, r, "/admin_dashboard", "error", fmt.Sprintf("Upload failed. Files may be at most %d MB in total.", h.MaxUploadBytes>>20))
		return
	}

	form := projectForm{
		Title:            strings.TrimSpace(r.FormValue("title")),
		Price:            r.FormValue("price"),
		Description:      r.FormValue("description"),
		ProblemStatement: r.FormValue("problem_statement"),
		Objectives:       r.FormValue("objectives"),
		Outcomes:         r.FormValue("outcomes"),
		Technologies:     r.FormValue("technologies"),
	}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, "/admin_dashboard", "error", strings.Join(msgs, " "))
		return
	}
	price, err := parsePrice(form.Price)
	if err != nil {
		h.redirectWithFlash(w, r, "/admin_dashboard", "error", invalidPriceMsg)
		return
	}

	project := &models.Project{
		Title:            form.Title,
		Price:            price,
		Description:      form.Description,
		ProblemStatement: form.ProblemStatement,
		Objectives:       form.Objectives,
		Outcomes:         form.Outcomes,
		Technologies:     form.Technologies,
	}

	var saved []string
	fail := func(msg string) {
		h.Uploads.Remove(saved...)
		h.redirectWithFlash(w, r, "/admin_dashboard", "error", msg)
	}

	if files := r.MultipartForm.File["project_file"]; len(files) > 0 && files[0].Filename != "" {
		if project.ProjectFile, err = h.Uploads.Save(files[0]); err != nil {
			slog.Error("Failed to save project file", "error", err)
			fail("Error saving project file.")
			return
		}
		saved = append(saved, project.ProjectFile)
	}
	project.Photos, err = h.Uploads.SaveAll(r.MultipartForm.File["photos"], true)
	saved = append(saved, project.Photos...)
	if err != nil {
		slog.Error("Failed to save project photos", "error", err)
		fail("Error saving photos.")
		return
	}
	project.Videos, err = h.Uploads.SaveAll(r.MultipartForm.File["videos"], false)
	saved = append(saved, project.Videos...)
	if err != nil {
		slog.Error("Failed to save project videos", "error", err)
		fail("Error saving videos.")
		return
	}

	id, err := h.Store.CreateProject(project)
	if err != nil {
		slog.Error("Failed to create project", "error", err)
		fail("Error saving project to database.")
		return
	}

	slog.Info("Project created", "project_id", id, "photos", len(project.Photos), "videos", len(project.Videos))
	h.redirectWithFlash(w, r, "/admin_dashboard", "success", "Project added successfully!")
}

func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.redirectWithFlash(w, r, "/", "error", "Invalid project ID.")
		return
	}

	err := h.Store.DeleteProject(id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/", "error", "Project not found.")
		return
	}
	if err != nil {
		slog.Error("Failed to delete project", "project_id", id, "error", err)
		h.redirectWithFlash(w, r, "/", "error", "Error deleting project.")
		return
	}

	h.redirectWithFlash(w, r, "/", "success", "Project deleted.")
}
