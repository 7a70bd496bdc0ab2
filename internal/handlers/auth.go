package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	*Deps
}

func (h *AuthHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin_login.html", nil)
}

func (h *AuthHandler) StudentLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "student_login.html", nil)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "student_register.html", nil)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, store.AdminAccounts, sessionAdmin, "/admin_login", "/admin_dashboard")
}

func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, store.StudentAccounts, sessionStudent, "/student_login", "/")
}

// login checks the credentials against table and sets the session flag on success.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, table, flag, formURL, nextURL string) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.Store.GetAccount(table, username)
	if err != nil {
		slog.Error("Failed to load account", "table", table, "error", err)
		h.redirectWithFlash(w, r, formURL, "error", "Internal Server Error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		h.redirectWithFlash(w, r, formURL, "error", "Invalid username or password")
		return
	}

	session := h.session(r)
	session.Values[flag] = user.Username
	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome, " + user.Username + "!"})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful", "role", flag, "username", user.Username)
	http.Redirect(w, r, nextURL, http.StatusSeeOther)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := credentialsForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		h.redirectWithFlash(w, r, "/register", "error", strings.Join(msgs, " "))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		h.redirectWithFlash(w, r, "/register", "error", "Internal Server Error")
		return
	}

	err = h.Store.CreateAccount(store.StudentAccounts, form.Username, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		h.redirectWithFlash(w, r, "/register", "error", "That username is already taken.")
		return
	}
	if err != nil {
		slog.Error("Failed to create student", "error", err)
		h.redirectWithFlash(w, r, "/register", "error", "Internal Server Error")
		return
	}

	slog.Info("Student registered", "username", form.Username)
	h.redirectWithFlash(w, r, "/student_login", "success", "Account created. Please log in.")
}

// Logout clears both the student and the admin flag.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	delete(session.Values, sessionStudent)
	delete(session.Values, sessionAdmin)
	session.AddFlash(FlashMessage{Type: "success", Message: "Logged out successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
