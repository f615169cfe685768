package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/generate"
	"github.com/jhlee0409/sidedish-sub001/service/session"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// UserCreateFunc stores the provided user and creates a session.
type UserCreateFunc func(ns string, u *user.User) (*user.User, error)

// UserCreate stores the provided user and creates a session.
func UserCreate(
	sessions session.Service,
	users user.Service,
) UserCreateFunc {
	return func(ns string, u *user.User) (*user.User, error) {
		if err := u.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		epw, err := passwordSecure(u.Password)
		if err != nil {
			return nil, err
		}

		u.Enabled = true
		u.Password = epw

		u, err = users.Put(ns, u)
		if err != nil {
			return nil, err
		}

		err = enrichSessionToken(sessions, ns, u)
		if err != nil {
			return nil, err
		}

		return u, nil
	}
}

// UserDeleteFunc disables the user.
type UserDeleteFunc func(ns string, origin *user.User) error

// UserDelete disables the user.
func UserDelete(
	users user.Service,
) UserDeleteFunc {
	return func(ns string, origin *user.User) error {
		origin.Deleted = true
		origin.Enabled = false

		_, err := users.Put(ns, origin)
		return err
	}
}

// UserFetchFunc returns the User for the given id.
type UserFetchFunc func(ns string, id uint64) (*user.User, error)

// UserFetch returns the User for the given id.
func UserFetch(users user.Service) UserFetchFunc {
	return func(ns string, id uint64) (*user.User, error) {
		us, err := users.Query(ns, user.QueryOptions{
			Enabled: &defaultEnabled,
			IDs: []uint64{
				id,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 0 {
			return nil, ErrNotFound
		}

		return us[0], nil
	}
}

// UserLoginFunc finds the user by email or username and returns them with a
// valid session token.
type UserLoginFunc func(
	ns string,
	email, username, password string,
) (*user.User, error)

// UserLogin finds the user by email or username and returns them with a
// valid session token.
func UserLogin(
	sessions session.Service,
	users user.Service,
) UserLoginFunc {
	return func(
		ns string,
		email, username, password string,
	) (*user.User, error) {
		us, err := users.Query(ns, user.QueryOptions{
			Enabled: &defaultEnabled,
			Emails: []string{
				email,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 1 {
			return login(sessions, ns, us[0], password)
		}

		us, err = users.Query(ns, user.QueryOptions{
			Enabled: &defaultEnabled,
			Usernames: []string{
				username,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 1 {
			return login(sessions, ns, us[0], password)
		}

		return nil, ErrNotFound
	}
}

// UserLogoutFunc destroys the session stored under token.
type UserLogoutFunc func(ns string, origin uint64, token string) error

// UserLogout destroys the session stored under token.
func UserLogout(
	sessions session.Service,
) UserLogoutFunc {
	return func(ns string, origin uint64, token string) error {
		ss, err := sessions.Query(ns, session.QueryOptions{
			Enabled: &defaultEnabled,
			IDs: []string{
				token,
			},
			UserIDs: []uint64{
				origin,
			},
		})
		if err != nil {
			return err
		}

		if len(ss) == 0 {
			return nil
		}

		s := ss[0]
		s.Enabled = false

		_, err = sessions.Put(ns, s)
		return err
	}
}

// UserRetrieveFunc returns the user for the given id.
type UserRetrieveFunc func(
	ns string,
	origin Origin,
	userID uint64,
) (*user.User, error)

// UserRetrieve returns the user for the given id.
func UserRetrieve(
	sessions session.Service,
	users user.Service,
) UserRetrieveFunc {
	return func(ns string, origin Origin, userID uint64) (*user.User, error) {
		us, err := users.Query(ns, user.QueryOptions{
			Enabled: &defaultEnabled,
			IDs: []uint64{
				userID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) != 1 {
			return nil, ErrNotFound
		}

		u := us[0]

		if origin.UserID == userID {
			err = enrichSessionToken(sessions, ns, u)
			if err != nil {
				return nil, err
			}
		}

		return u, nil
	}
}

// UserUpdateFunc stores the new attributes for the user.
type UserUpdateFunc func(
	ns string,
	origin Origin,
	old *user.User,
	new *user.User,
) (*user.User, error)

// UserUpdate stores the new attributes for the user.
func UserUpdate(
	sessions session.Service,
	users user.Service,
) UserUpdateFunc {
	return func(
		ns string,
		origin Origin,
		old *user.User,
		new *user.User,
	) (*user.User, error) {
		new.Enabled = true
		new.ID = old.ID

		if new.Password != "" {
			epw, err := passwordSecure(new.Password)
			if err != nil {
				return nil, err
			}

			new.Password = epw
		} else {
			new.Password = old.Password
		}

		u, err := users.Put(ns, new)
		if err != nil {
			return nil, err
		}

		err = enrichSessionToken(sessions, ns, u)
		if err != nil {
			return nil, err
		}

		return u, nil
	}
}

// UsersFetchFunc retrieves the users for the given ids.
type UsersFetchFunc func(ns string, ids ...uint64) (user.List, error)

// UsersFetch retrieves the users for the given ids.
func UsersFetch(users user.Service) UsersFetchFunc {
	return func(ns string, ids ...uint64) (user.List, error) {
		if len(ids) == 0 {
			return user.List{}, nil
		}

		return users.Query(ns, user.QueryOptions{
			Enabled: &defaultEnabled,
			IDs:     ids,
		})
	}
}

func enrichSessionToken(
	sessions session.Service,
	ns string,
	u *user.User,
) error {
	ss, err := sessions.Query(ns, session.QueryOptions{
		Enabled: &defaultEnabled,
		UserIDs: []uint64{
			u.ID,
		},
	})
	if err != nil {
		return err
	}

	var s *session.Session

	if len(ss) > 0 {
		s = ss[0]
	} else {
		s, err = sessions.Put(ns, &session.Session{
			Enabled: true,
			UserID:  u.ID,
		})
		if err != nil {
			return err
		}
	}

	u.SessionToken = s.ID

	return nil
}

func login(
	sessions session.Service,
	ns string,
	u *user.User,
	password string,
) (*user.User, error) {
	valid, err := passwordCompare(password, u.Password)
	if err != nil {
		return nil, ErrNotFound
	}

	if !valid {
		return nil, wrapError(ErrUnauthorized, "wrong credentials")
	}

	err = enrichSessionToken(sessions, ns, u)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func passwordCompare(dec, enc string) (bool, error) {
	d, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return false, err
	}

	ps := strings.SplitN(string(d), ":", 3)

	epw, err := base64.StdEncoding.DecodeString(ps[2])
	if err != nil {
		return false, err
	}

	salt, err := base64.StdEncoding.DecodeString(ps[0])
	if err != nil {
		return false, err
	}

	ts, err := base64.StdEncoding.DecodeString(ps[1])
	if err != nil {
		return false, err
	}

	esalt := []byte{}
	esalt = append(esalt, salt...)
	esalt = append(esalt, []byte(":")...)
	esalt = append(esalt, ts...)

	ipw, err := generate.EncryptPassword([]byte(dec), esalt)
	if err != nil {
		return false, err
	}

	return string(epw) == string(ipw), nil
}

func passwordSecure(pw string) (string, error) {
	salt, err := generate.Salt()
	if err != nil {
		return "", err
	}

	var (
		esalt = []byte{}
		ts    = []byte(time.Now().Format(time.RFC3339))
	)

	esalt = append(esalt, salt...)
	esalt = append(esalt, []byte(":")...)
	esalt = append(esalt, ts...)

	epw, err := generate.EncryptPassword([]byte(pw), esalt)
	if err != nil {
		return "", err
	}

	enc := fmt.Sprintf(
		"%s:%s:%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(ts),
		base64.StdEncoding.EncodeToString(epw),
	)

	return base64.StdEncoding.EncodeToString([]byte(enc)), nil
}
