package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/inputval"
	"github.com/dalemusser/inkwell/internal/app/system/normalize"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown username
// and for a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// SignupInput is the submitted registration form.
type SignupInput struct {
	Username string `form:"username" validate:"required,max=150,username" label:"Username"`
	FullName string `form:"full_name" validate:"max=150" label:"Full name"`
	Password string `form:"password1" validate:"required,min=8,max=128" label:"Password"`
	Confirm  string `form:"password2" validate:"required,eqfield=Password" label:"Password confirmation"`
}

// BcryptCost is the work factor for new password hashes. Tests lower it.
var BcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when the username is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inkwell-dummy-password"), bcrypt.MinCost)

// Register creates an account.
func (s *Service) Register(ctx context.Context, in SignupInput) (models.User, error) {
	in.Username = normalize.Username(in.Username)
	in.FullName = normalize.Name(in.FullName)

	if res := inputval.Validate(in); res.HasErrors() {
		return models.User{}, &ValidationError{Fields: res.Fields()}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	at := s.now()
	u, err := s.st.CreateUser(ctx, models.User{
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		CreatedAt:    at,
		UpdatedAt:    at,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.User{}, fieldError("username", "A user with that username already exists.")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", u.Username))
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	username = normalize.Username(username)
	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	u, err := s.st.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}
