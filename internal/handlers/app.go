package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rakesh-6305/project-store/internal/payment"
	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/uploads"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding both the admin and the student login.
const SessionName = "hub-session"

const (
	sessionAdmin   = "admin"
	sessionStudent = "student"
)

var errTemplateNotFound = errors.New("template not found")

// Deps is shared by every handler group.
type Deps struct {
	Store          *store.Store
	SessionStore   *sessions.CookieStore
	Templates      *TemplateCache
	Uploads        *uploads.Dir
	UPI            payment.UPI
	MaxUploadBytes int64
}

func (d *Deps) session(r *http.Request) *sessions.Session {
	// Get only fails on a tampered or stale cookie; a fresh session is returned regardless.
	session, _ := d.SessionStore.Get(r, SessionName)
	return session
}

// studentName returns the logged in student, if any.
func (d *Deps) studentName(r *http.Request) (string, bool) {
	name, ok := d.session(r).Values[sessionStudent].(string)
	return name, ok && name != ""
}

func (d *Deps) isAdmin(r *http.Request) bool {
	name, ok := d.session(r).Values[sessionAdmin].(string)
	return ok && name != ""
}

// redirectWithFlash stores a flash message and redirects.
func (d *Deps) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, typ, msg string) {
	session := d.session(r)
	session.AddFlash(FlashMessage{Type: typ, Message: msg})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// render executes a page with the common layout data (flashes, CSRF field, login state).
func (d *Deps) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	session := d.session(r)
	data["Flashes"] = GetFlash(session)
	data["CsrfField"] = csrf.TemplateField(r)
	data["CsrfToken"] = csrf.Token(r)
	data["Student"], _ = session.Values[sessionStudent].(string)
	data["IsAdmin"] = d.isAdmin(r)
	session.Save(r, w) // Save session to clear flashes

	if err := d.Templates.Execute(w, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		if errors.Is(err, errTemplateNotFound) {
			http.Error(w, "Template not found", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// handleDBError reports a database failure as a JSON 500.
func handleDBError(w http.ResponseWriter, err error) {
	slog.Error("Database error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Database error occurred",
		"message": err.Error(),
	})
}

// pathID parses the named integer path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// RequireAdmin redirects to the admin login unless the session carries the admin flag.
func (d *Deps) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.isAdmin(r) {
			slog.Info("Admin access denied, redirecting to /admin_login", "path", r.URL.Path)
			d.redirectWithFlash(w, r, "/admin_login", "error", "You must be logged in as admin to access this page.")
			return
		}
		next(w, r)
	}
}

// RequireStudent redirects to the student login unless a student is logged in.
func (d *Deps) RequireStudent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := d.studentName(r); !ok {
			d.redirectWithFlash(w, r, "/student_login", "error", "Please log in to continue.")
			return
		}
		next(w, r)
	}
}

// Routes wires every page and API endpoint. registerLimiter may be nil.
func Routes(d *Deps, staticDir string, registerLimiter *RateLimiter) *http.ServeMux {
	home := &HomeHandler{Deps: d}
	auth := &AuthHandler{Deps: d}
	admin := &AdminHandler{Deps: d}
	student := &StudentHandler{Deps: d}
	chat := &ChatHandler{Deps: d}

	register := auth.Register
	if registerLimiter != nil {
		register = registerLimiter.Middleware(register)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", StaticHandler(staticDir))

	// Public
	mux.HandleFunc("GET /{$}", home.Index)
	mux.HandleFunc("GET /project/{id}", home.ProjectDetail)

	// Accounts
	mux.HandleFunc("GET /admin_login", auth.AdminLoginForm)
	mux.HandleFunc("POST /admin_login", auth.AdminLogin)
	mux.HandleFunc("GET /student_login", auth.StudentLoginForm)
	mux.HandleFunc("POST /student_login", auth.StudentLogin)
	mux.HandleFunc("GET /register", auth.RegisterForm)
	mux.HandleFunc("POST /register", register)
	mux.HandleFunc("GET /logout", auth.Logout)

	// Admin
	mux.HandleFunc("GET /admin_dashboard", d.RequireAdmin(admin.Dashboard))
	mux.HandleFunc("POST /add_project", d.RequireAdmin(admin.AddProject))
	mux.HandleFunc("POST /delete/{id}", d.RequireAdmin(admin.DeleteProject))
	mux.HandleFunc("GET /admin_orders", d.RequireAdmin(admin.ListOrders))
	mux.HandleFunc("POST /confirm_payment/{id}", d.RequireAdmin(admin.ConfirmPayment))
	mux.HandleFunc("GET /admin_requests", d.RequireAdmin(admin.ListRequests))
	mux.HandleFunc("POST /admin_set_price/{id}", d.RequireAdmin(admin.SetPrice))
	mux.HandleFunc("POST /admin_complete_request/{id}", d.RequireAdmin(admin.CompleteRequest))

	// Student purchases
	mux.HandleFunc("GET /checkout/{id}", d.RequireStudent(student.Checkout))
	mux.HandleFunc("GET /checkout/{id}/qr.png", d.RequireStudent(student.CheckoutQR))
	mux.HandleFunc("POST /submit_payment/{id}", d.RequireStudent(student.SubmitPayment))
	mux.HandleFunc("GET /my_orders", d.RequireStudent(student.MyOrders))
	mux.HandleFunc("GET /download/{id}", d.RequireStudent(student.Download))

	// Student custom requests
	mux.HandleFunc("GET /request_project", d.RequireStudent(student.RequestForm))
	mux.HandleFunc("POST /request_project", d.RequireStudent(student.SubmitRequest))
	mux.HandleFunc("GET /my_requests", d.RequireStudent(student.MyRequests))
	mux.HandleFunc("POST /submit_request_payment/{id}", d.RequireStudent(student.SubmitRequestPayment))
	mux.HandleFunc("GET /download_request/{id}", d.RequireStudent(student.DownloadRequest))

	// Chat (JSON, polled by the pages)
	mux.HandleFunc("POST /send_message/{id}", chat.SendRequestMessage)
	mux.HandleFunc("GET /get_messages/{id}", chat.RequestMessages)
	mux.HandleFunc("POST /send_order_message/{id}", chat.SendOrderMessage)
	mux.HandleFunc("GET /get_order_messages/{id}", chat.OrderMessages)

	return mux
}
