package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (a *API) signUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.users.SignUp(r.Context(), in.Email, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info(r.Context(), "user signed up", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": u.ID})
}

func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	pair, err := a.users.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	if in.RefreshToken == "" {
		a.writeError(w, r, common.ErrInvalidToken)
		return
	}
	pair, err := a.users.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.users.SignOut(r.Context(), in.RefreshToken); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) session(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	var in passwordRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	ok, err := a.users.VerifyPassword(r.Context(), sess.UserID, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}
