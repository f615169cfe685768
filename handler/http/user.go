package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// UserCreate stores the provided user and returns it with a valid session.
func UserCreate(fn core.UserCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns = namespaceFromContext(ctx)
			p  = payloadUser{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		u, err := fn(ns, p.user)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadUser{user: u})
	}
}

// UserDelete disbales the current user.
func UserDelete(fn core.UserDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			ns          = namespaceFromContext(ctx)
		)

		err := fn(ns, currentUser)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// UserLogin finds the user by email or username and creates a Session.
func UserLogin(fn core.UserLoginFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns = namespaceFromContext(ctx)
			p  = payloadLogin{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		u, err := fn(ns, p.email, p.username, p.password)
		if err != nil {
			if core.IsNotFound(err) {
				respondError(w, 1001, wrapError(ErrUnauthorized, "user not found"))
				return
			}

			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadUser{user: u})
	}
}

// UserLogout finds the session of the user and destroys it.
func UserLogout(fn core.UserLogoutFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			ns          = namespaceFromContext(ctx)
			token       = tokenFromContext(ctx)
		)

		err := fn(ns, currentUser.ID, token)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// UserRetrieve returns the user for the requested id.
func UserRetrieve(fn core.UserRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		userID, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		u, err := fn(ns, origin, userID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUser{user: u})
	}
}

// UserRetrieveMe returns the current user.
func UserRetrieveMe(fn core.UserRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			ns          = namespaceFromContext(ctx)
			origin      = originFromContext(ctx)
		)

		u, err := fn(ns, origin, currentUser.ID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUser{user: u})
	}
}

// UserUpdate stores the new attributes given.
func UserUpdate(fn core.UserUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			ns          = namespaceFromContext(ctx)
			origin      = originFromContext(ctx)
			p           = payloadUser{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		u, err := fn(ns, origin, currentUser, p.user)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUser{user: u})
	}
}

type payloadLogin struct {
	email    string
	password string
	username string
}

func (p *payloadLogin) UnmarshalJSON(raw []byte) error {
	f := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"user_name"`
		Wildcard string `json:"username"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	if f.Password == "" {
		return fmt.Errorf("password must be set")
	}

	if f.Wildcard != "" {
		f.Email, f.Username = f.Wildcard, f.Wildcard
	}

	if f.Email == "" && f.Username == "" {
		return fmt.Errorf("email or user_name must be provided")
	}

	p.email = f.Email
	p.password = f.Password
	p.username = f.Username

	return nil
}

type payloadUser struct {
	user *user.User
}

func (p *payloadUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		About        string    `json:"about"`
		Email        string    `json:"email"`
		Enabled      bool      `json:"enabled"`
		ID           string    `json:"id"`
		ImageURL     string    `json:"image_url,omitempty"`
		SessionToken string    `json:"session_token,omitempty"`
		URL          string    `json:"url,omitempty"`
		Username     string    `json:"user_name"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}{
		About:        p.user.About,
		Email:        p.user.Email,
		Enabled:      p.user.Enabled,
		ID:           strconv.FormatUint(p.user.ID, 10),
		ImageURL:     p.user.ImageURL,
		SessionToken: p.user.SessionToken,
		URL:          p.user.URL,
		Username:     p.user.Username,
		CreatedAt:    p.user.CreatedAt,
		UpdatedAt:    p.user.UpdatedAt,
	})
}

func (p *payloadUser) UnmarshalJSON(raw []byte) error {
	f := struct {
		About    string `json:"about"`
		Email    string `json:"email"`
		ImageURL string `json:"image_url,omitempty"`
		Password string `json:"password,omitempty"`
		URL      string `json:"url,omitempty"`
		Username string `json:"user_name"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	p.user = &user.User{
		About:    f.About,
		Email:    f.Email,
		ImageURL: f.ImageURL,
		Password: f.Password,
		URL:      f.URL,
		Username: f.Username,
	}

	return nil
}

type payloadUserMap struct {
	userMap user.Map
}

func (p *payloadUserMap) MarshalJSON() ([]byte, error) {
	m := map[string]*payloadUser{}

	for id, u := range p.userMap {
		m[strconv.FormatUint(id, 10)] = &payloadUser{user: u}
	}

	return json.Marshal(m)
}
