// Package web is the HTTP boundary of the relay: route wiring, form
// handling, and session cookie management. It holds no state of its own;
// every operation goes through the services layer with an identity
// resolved by the session middleware.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"message-relay/auth"
	relayerrors "message-relay/errors"
	"message-relay/services"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type Handler struct {
	authService  services.IAuthService
	relayService services.IRelayService
	tokens       *auth.TokenManager
	sessionTTL   time.Duration
	log          *slog.Logger
}

func NewHandler(
	authService services.IAuthService,
	relayService services.IRelayService,
	tokens *auth.TokenManager,
	sessionTTL time.Duration,
	log *slog.Logger,
) *Handler {
	return &Handler{
		authService:  authService,
		relayService: relayService,
		tokens:       tokens,
		sessionTTL:   sessionTTL,
		log:          log,
	}
}

// Routes builds the full route tree. Register/login/logout and the
// landing page are public; everything else requires a bound session.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Logging(h.log))

	r.Get("/", h.index)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.tokens))
		r.Get("/business", h.business)
		r.Get("/user", h.inboxPage)
		r.Post("/send_message", h.sendMessage)
		r.Get("/get_messages", h.getMessages)
	})

	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", nil)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", nil)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	_, err := h.authService.Register(username, password)
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, relayerrors.ErrUsernameTaken):
		h.plainText(w, relayerrors.HTTPStatus(err), "Username already exists")
	case errors.Is(err, relayerrors.ErrInvalidInput):
		h.plainText(w, relayerrors.HTTPStatus(err), "Username and password are required")
	default:
		h.log.Error("registration failed", "error", err)
		h.plainText(w, http.StatusInternalServerError, "Registration failed")
	}
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, err := h.authService.Login(username, password)
	if err != nil {
		h.plainText(w, relayerrors.HTTPStatus(relayerrors.ErrInvalidCredentials), "Invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	// Unbind the session: an expired empty cookie overwrites the token.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) business(w http.ResponseWriter, r *http.Request) {
	h.render(w, "business.html", nil)
}

func (h *Handler) inboxPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "user.html", nil)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.plainText(w, relayerrors.HTTPStatus(relayerrors.ErrUnauthorized), "Authentication required")
		return
	}

	content := r.PostFormValue("message")
	// Comma-split with per-element trim. Empty elements are kept: "a,,b"
	// fans out to three messages, one addressed to "".
	recipients := lo.Map(strings.Split(r.PostFormValue("recipients"), ","), func(recipient string, _ int) string {
		return strings.TrimSpace(recipient)
	})

	count, err := h.relayService.Send(identity, content, recipients)
	if err != nil {
		h.log.Error("send failed", "sender", identity.Username, "error", err)
		h.plainText(w, http.StatusInternalServerError, "Send failed")
		return
	}

	h.plainText(w, http.StatusOK, fmt.Sprintf("Message sent to %d recipient(s)", count))
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.plainText(w, relayerrors.HTTPStatus(relayerrors.ErrUnauthorized), "Authentication required")
		return
	}

	messages, err := h.relayService.Inbox(identity)
	if err != nil {
		h.log.Error("inbox read failed", "recipient", identity.Username, "error", err)
		h.plainText(w, http.StatusInternalServerError, "Inbox unavailable")
		return
	}

	h.render(w, "messages.html", map[string]any{"Messages": messages})
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("template rendering failed", "template", name, "error", err)
	}
}

func (h *Handler) plainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := fmt.Fprint(w, body); err != nil {
		h.log.Error("failed to write HTTP response", "error", err)
	}
}
