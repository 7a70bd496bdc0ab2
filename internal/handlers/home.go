package handlers

import (
	"errors"
	"net/http"

	"github.com/Rakesh-6305/project-store/internal/store"
)

type HomeHandler struct {
	*Deps
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects()
	if err != nil {
		handleDBError(w, err)
		return
	}

	h.render(w, r, "index.html", map[string]interface{}{
		"Projects": projects,
	})
}

func (h *HomeHandler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.Store.GetProjectByID(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		handleDBError(w, err)
		return
	}

	data := map[string]interface{}{"Project": project}
	if student, ok := h.studentName(r); ok {
		if order, err := h.Store.GetOrderFor(id, student); err == nil {
			data["Order"] = order
		}
	}
	h.render(w, r, "project.html", data)
}
