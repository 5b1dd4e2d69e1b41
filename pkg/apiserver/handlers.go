package apiserver

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/auth"
	"github.com/tectrixdev/unplayit/pkg/backend"
	"github.com/tectrixdev/unplayit/pkg/db"
	"github.com/tectrixdev/unplayit/pkg/model"
	"github.com/tectrixdev/unplayit/pkg/status"
	"github.com/tectrixdev/unplayit/pkg/version"
)

const (
	msgUnauthorized   = "Unauthorized"
	msgDNSAuthFailed  = "DNS authentication failed. Please report this issue on GitHub."
	msgUnexpected     = "Unexpected error. Please contact support."
	msgHostnameInUse  = "configuration in use by another user"
	msgLookupFailed   = "an error occured while searching for existing records"
	msgPartialCleanup = "Your previous registration could not be fully removed. Please try again later."
	msgRegisterFailed = "An error occurred. Please try again or contact support, your domain could be working though, try:"
	msgCleanupPending = "Your previous DNS record could not be removed right away; it will be cleaned up automatically."
)

type userService interface {
	Login(name, token string) (db.User, error)
	Authorize(userID uint) (bool, error)
}

type handler struct {
	backend  backend.Backend
	sessions *auth.Sessions
	users    userService
}

func newHandler(b backend.Backend, sessions *auth.Sessions, users userService) *handler {
	return &handler{
		backend:  b,
		sessions: sessions,
		users:    users,
	}
}

func (h *handler) version(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, version.Get())
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorized(r); !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	renderView(w, http.StatusOK, "index.html", viewData{
		BaseDomain: h.backend.GetRootDomain(),
		Labels:     model.Labels,
		Port:       model.DefaultPort,
	})
}

func (h *handler) getLogin(w http.ResponseWriter, r *http.Request) {
	renderView(w, http.StatusOK, "login.html", viewData{Title: "Log in"})
}

func (h *handler) postLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderView(w, http.StatusBadRequest, "login.html", viewData{Title: "Log in", Message: err.Error()})
		return
	}

	user, err := h.users.Login(r.PostFormValue("user"), r.PostFormValue("token"))
	if err != nil {
		logrus.Infof("login failed for %q: %v", r.PostFormValue("user"), err)
		renderView(w, http.StatusUnauthorized, "login.html", viewData{Title: "Log in", Message: "Invalid user or token"})
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		logrus.Errorf("failed to issue session for user %d: %v", user.ID, err)
		renderMessage(w, http.StatusInternalServerError, msgUnexpected, "")
		return
	}

	http.SetCookie(w, h.sessions.Cookie(token))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}

// dash registers the requested hostname for the caller and shows its status.
func (h *handler) dash(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorized(r)
	if !ok {
		renderMessage(w, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}

	req := model.ParseRegisterRequest(r.URL.Query())
	res, err := h.backend.Register(r.Context(), userID, req)
	if err != nil {
		httpStatus, msg, link := describeRegisterError(err, req.FQDN(h.backend.GetRootDomain()))
		renderMessage(w, httpStatus, msg, link)
		return
	}

	data := viewData{Title: "Server Status", Status: res.Status}
	if res.Cleanup.Partial() {
		data.Note = msgCleanupPending
	}
	renderView(w, http.StatusOK, "status.html", data)
}

// serverStatus re-renders the status of a hostname without registering it again.
func (h *handler) serverStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorized(r); !ok {
		renderMessage(w, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}

	req := model.ParseRegisterRequest(r.URL.Query())
	if req.Word == "" {
		renderMessage(w, http.StatusBadRequest, "invalid request: a subdomain must be provided", "")
		return
	}

	renderView(w, http.StatusOK, "status.html", viewData{
		Title:  "Server Status",
		Status: h.backend.Status(r.Context(), req),
	})
}

// authorized reports the caller's user id when they hold a session and pass the
// authorization check.
func (h *handler) authorized(r *http.Request) (uint, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		return 0, false
	}

	allowed, err := h.users.Authorize(userID)
	if err != nil {
		logrus.Errorf("authorization check for user %d failed: %v", userID, err)
		return 0, false
	}
	if !allowed {
		logrus.Infof("user %d is not authorized", userID)
		return 0, false
	}
	return userID, true
}

func describeRegisterError(err error, hostname string) (int, string, string) {
	switch {
	case errors.Is(err, backend.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error(), ""
	case errors.Is(err, backend.ErrDNSForbidden):
		return http.StatusBadGateway, msgDNSAuthFailed, ""
	case errors.Is(err, backend.ErrDNSUnavailable):
		return http.StatusBadGateway, msgUnexpected, ""
	case errors.Is(err, backend.ErrHostnameInUse):
		return http.StatusConflict, msgHostnameInUse, ""
	case errors.Is(err, backend.ErrLookup):
		return http.StatusInternalServerError, msgLookupFailed, ""
	case errors.Is(err, backend.ErrPartialCleanup):
		return http.StatusInternalServerError, msgPartialCleanup, ""
	default:
		return http.StatusInternalServerError, msgRegisterFailed, status.CheckURL(hostname)
	}
}
