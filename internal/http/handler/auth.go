package handler

import (
	"net/http"
	"strings"
	"time"

	"fintra/internal/apperr"
	"fintra/internal/auth"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Accounts     *auth.Service
	TokenTTL     time.Duration
	CookieSecure bool
	Log          logrus.FieldLogger
}

func credentials(r *http.Request) (string, string, error) {
	if err := r.ParseForm(); err != nil {
		return "", "", apperr.Validation("bad form body")
	}
	return strings.TrimSpace(r.PostForm.Get("email")), r.PostForm.Get("password"), nil
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	email, password, err := credentials(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	sess, err := h.Accounts.Register(r.Context(), email, password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	auth.SetCookie(w, sess.Token, h.TokenTTL, h.CookieSecure)
	writeJSON(w, http.StatusCreated, map[string]any{"email": sess.User.Email})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, err := credentials(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	sess, err := h.Accounts.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	auth.SetCookie(w, sess.Token, h.TokenTTL, h.CookieSecure)
	writeJSON(w, http.StatusOK, map[string]any{"email": sess.User.Email})
}

// Logout only clears the cookie. The token stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"result": "logged out"})
}
