package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/models"
	"github.com/Rakesh-6305/project-store/internal/store"
)

// ChatHandler serves the polled JSON chat attached to requests and orders.
type ChatHandler struct {
	*Deps
}

type messageView struct {
	ID        int64  `json:"id"`
	RequestID int64  `json:"request_id,omitempty"`
	OrderID   int64  `json:"order_id,omitempty"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// participant returns the chat sender name, or "" when nobody is logged in.
// A logged in student speaks as themselves; admin access comes from the admin flag alone.
func (h *ChatHandler) participant(r *http.Request) (sender string, admin bool) {
	admin = h.isAdmin(r)
	if student, ok := h.studentName(r); ok {
		return student, admin
	}
	if admin {
		return models.AdminSender, true
	}
	return "", false
}

// threadOwner returns the student that owns the request or order.
func (h *ChatHandler) threadOwner(t store.Thread, id int64) (string, error) {
	if t == store.OrderThread {
		o, err := h.Store.GetOrder(id)
		if err != nil {
			return "", err
		}
		return o.StudentUsername, nil
	}
	req, err := h.Store.GetRequest(id)
	if err != nil {
		return "", err
	}
	return req.StudentUsername, nil
}

// authorize resolves the caller and the thread id, writing the error response itself.
func (h *ChatHandler) authorize(w http.ResponseWriter, r *http.Request, t store.Thread) (string, int64, bool) {
	sender, admin := h.participant(r)
	if sender == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return "", 0, false
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return "", 0, false
	}

	owner, err := h.threadOwner(t, id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return "", 0, false
	}
	if err != nil {
		handleDBError(w, err)
		return "", 0, false
	}
	if !admin && owner != sender {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return "", 0, false
	}
	return sender, id, true
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request, t store.Thread) {
	sender, id, ok := h.authorize(w, r, t)
	if !ok {
		return
	}

	var body sendMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Empty message"})
		return
	}

	if err := h.Store.AddMessage(t, id, sender, msg); err != nil {
		handleDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *ChatHandler) list(w http.ResponseWriter, r *http.Request, t store.Thread) {
	_, id, ok := h.authorize(w, r, t)
	if !ok {
		return
	}

	msgs, err := h.Store.Messages(t, id)
	if err != nil {
		handleDBError(w, err)
		return
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		v := messageView{
			ID:        m.ID,
			Sender:    m.Sender,
			Message:   m.Message,
			Timestamp: m.Timestamp.Format("2006-01-02 15:04:05"),
		}
		if t == store.OrderThread {
			v.OrderID = m.ThreadID
		} else {
			v.RequestID = m.ThreadID
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": views})
}

func (h *ChatHandler) SendRequestMessage(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, store.RequestThread)
}

func (h *ChatHandler) RequestMessages(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.RequestThread)
}

func (h *ChatHandler) SendOrderMessage(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, store.OrderThread)
}

func (h *ChatHandler) OrderMessages(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.OrderThread)
}
