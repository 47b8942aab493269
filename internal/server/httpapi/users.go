package httpapi

import (
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/server/services"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type genderRequest struct {
	Username string `json:"username"`
	Gender   string `json:"gender"`
}

func (c *credentials) fromForm(v url.Values) {
	c.Username, c.Password = v.Get("username"), v.Get("password")
}

func (g *genderRequest) fromForm(v url.Values) {
	g.Username, g.Gender = v.Get("username"), v.Get("gender")
}

type sessionResponse struct {
	Username string `json:"username"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{Username: sess.Username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, common.ErrInvalidCredentials)
		return
	}
	sess, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sessionResponse{Username: sess.Username})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.users.Logout(r.Context(), Username(r.Context()))
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateGender(w http.ResponseWriter, r *http.Request) {
	var req genderRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := bodyUser(r, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.users.UpdateGender(r.Context(), username, req.Gender); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateDetails(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	pic, closePic, err := formFile(r, "image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closePic()

	profile, err := h.users.UpdateDetails(r.Context(), Username(r.Context()), pic)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func setSessionCookie(w http.ResponseWriter, sess *services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    sess.Cookie,
		Path:     "/",
		MaxAge:   int(sess.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// bodyUser checks a username sent in a request body against the caller.
// An empty body username means the caller.
func bodyUser(r *http.Request, name string) (string, error) {
	caller := Username(r.Context())
	if name != "" && name != caller {
		return "", common.ErrForbidden
	}
	return caller, nil
}
