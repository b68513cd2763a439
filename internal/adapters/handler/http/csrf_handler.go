package http

import (
	"net/http"

	"github.com/gorilla/csrf"
)

const csrfCookieName = "upstart_csrf"

// csrfProtection issues the anti-forgery cookie that pairs with the token
// returned by CSRFToken.
func csrfProtection(key []byte) func(http.Handler) http.Handler {
	return csrf.Protect(key,
		csrf.CookieName(csrfCookieName),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Secure(false),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			msg := "invalid anti-forgery token"
			if reason := csrf.FailureReason(r); reason != nil {
				msg = reason.Error()
			}
			writeError(w, http.StatusForbidden, msg)
		})),
	)
}

type csrfTokenResponse struct {
	Token      string `json:"token"`
	HeaderName string `json:"headerName"`
}

// CSRFToken godoc
// @Summary      Issues an anti-forgery token
// @Tags         csrf
// @Produce      json
// @Success      200  {object}  csrfTokenResponse
// @Router       /csrf/token [get]
func CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set("X-CSRF-Token", token)
	writeJSON(w, http.StatusOK, csrfTokenResponse{Token: token, HeaderName: "X-CSRF-Token"})
}
