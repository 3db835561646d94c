package shop

import (
	"context"
	"errors"
	"log/slog"

	"marketplace/internal/accounts"
	"marketplace/internal/events"
	"marketplace/pkg/logkey"
)

type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Phone    string
}

func validateRegistration(r RegisterRequest) error {
	switch {
	case r.Username == "" || r.Password == "":
		return newError(KindValidation, ErrMsgCredentialsEmpty)
	case len(r.Username) < 3:
		return newError(KindValidation, ErrMsgUsernameTooShort)
	case len(r.Password) < 6:
		return newError(KindValidation, ErrMsgPasswordTooShort)
	case r.Phone == "":
		return newError(KindValidation, ErrMsgPhoneRequired)
	case !accounts.ValidPhone(r.Phone):
		return newError(KindValidation, ErrMsgPhoneInvalid)
	}
	return nil
}

// Register creates a customer account.
func (e *Engine) Register(ctx context.Context, r RegisterRequest) (accounts.Account, error) {
	a, err := e.register(ctx, r, accounts.RoleCustomer)
	e.observe("register", err)
	return a, err
}

// RegisterAdmin creates an admin account. It is meant for bootstrapping the
// first administrator and is not exposed over HTTP.
func (e *Engine) RegisterAdmin(ctx context.Context, r RegisterRequest) (accounts.Account, error) {
	a, err := e.register(ctx, r, accounts.RoleAdmin)
	e.observe("register_admin", err)
	return a, err
}

func (e *Engine) register(ctx context.Context, r RegisterRequest, role accounts.Role) (accounts.Account, error) {
	if err := validateRegistration(r); err != nil {
		return accounts.Account{}, err
	}
	a := accounts.Account{
		Username: r.Username,
		Password: r.Password,
		Role:     role,
		Email:    r.Email,
		Phone:    r.Phone,
	}
	if err := e.accounts.Create(a); err != nil {
		if errors.Is(err, accounts.ErrDuplicateUsername) {
			return accounts.Account{}, wrapError(KindDuplicateID, err, ErrMsgUsernameTaken)
		}
		return accounts.Account{}, err
	}

	e.logger.Info("account registered", slog.String(logkey.Username, a.Username), slog.String("role", string(role)))
	e.publish(ctx, events.TopicAccountCreated, a.Username, events.AccountCreatedEvent{
		Username:  a.Username,
		Role:      string(role),
		CreatedAt: e.now(),
	})
	return a, nil
}

// Login authenticates against the account store and binds the account to s.
// Any cart s held before is discarded.
func (e *Engine) Login(ctx context.Context, s *Session, username, password string) (accounts.Account, error) {
	a, err := e.login(s, username, password)
	e.observe("login", err)
	return a, err
}

func (e *Engine) login(s *Session, username, password string) (accounts.Account, error) {
	if s == nil {
		return accounts.Account{}, newError(KindValidation, "session is required")
	}
	if username == "" || password == "" {
		return accounts.Account{}, newError(KindValidation, ErrMsgCredentialsEmpty)
	}
	a, err := e.accounts.Find(username)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return accounts.Account{}, wrapError(KindInvalidCredentials, err, ErrMsgInvalidCredentials)
		}
		return accounts.Account{}, err
	}
	if a.Password != password {
		return accounts.Account{}, newError(KindInvalidCredentials, ErrMsgInvalidCredentials)
	}

	s.mu.Lock()
	s.login(a)
	s.mu.Unlock()
	e.logger.Info("user logged in", slog.String(logkey.Username, a.Username), slog.String(logkey.SessionID, s.ID))
	return a, nil
}

// Logout clears the session identity and cart. It never fails.
func (e *Engine) Logout(_ context.Context, s *Session) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

type ProfileUpdate struct {
	Email    string
	Phone    string
	Password string
}

// UpdateProfile changes the caller's contact details. Empty fields are left
// as they are.
func (e *Engine) UpdateProfile(_ context.Context, s *Session, u ProfileUpdate) (accounts.Account, error) {
	a, err := e.updateProfile(s, u)
	e.observe("update_profile", err)
	return a, err
}

func (e *Engine) updateProfile(s *Session, u ProfileUpdate) (accounts.Account, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return accounts.Account{}, err
	}
	if u.Phone != "" && !accounts.ValidPhone(u.Phone) {
		return accounts.Account{}, newError(KindValidation, ErrMsgPhoneInvalid)
	}
	if u.Password != "" && len(u.Password) < 6 {
		return accounts.Account{}, newError(KindValidation, ErrMsgPasswordTooShort)
	}

	a, err := e.accounts.Find(me.Username)
	if err != nil {
		return accounts.Account{}, wrapError(KindNotFound, err, "account %s not found", me.Username)
	}
	if u.Email != "" {
		a.Email = u.Email
	}
	if u.Phone != "" {
		a.Phone = u.Phone
	}
	if u.Password != "" {
		a.Password = u.Password
	}
	if err := e.accounts.Update(a); err != nil {
		return accounts.Account{}, wrapError(KindNotFound, err, "account %s not found", me.Username)
	}
	s.account = a
	return a, nil
}
