package service

import (
	"context"
	"errors"
	"regexp"
	"wikiforum/internal/auth"
	"wikiforum/internal/user/model"
	"wikiforum/internal/user/repository"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidLogin = errors.New("invalid login")
)

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordRE = regexp.MustCompile(`^.{3,20}$`)
	emailRE    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// ValidationError carries one message per rejected signup field.
type ValidationError struct {
	Username string
	Password string
	Verify   string
	Email    string
}

func (e *ValidationError) Error() string {
	for _, msg := range []string{e.Username, e.Password, e.Verify, e.Email} {
		if msg != "" {
			return msg
		}
	}
	return "invalid signup"
}

func (e *ValidationError) empty() bool {
	return e.Username == "" && e.Password == "" && e.Verify == "" && e.Email == ""
}

type UserService struct {
	Repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

// Validate applies the signup field rules. It returns nil when the form is acceptable.
func Validate(form model.SignupForm) *ValidationError {
	verr := &ValidationError{}
	if !usernameRE.MatchString(form.Username) {
		verr.Username = "That's not a valid username."
	}
	if !passwordRE.MatchString(form.Password) {
		verr.Password = "That wasn't a valid password."
	} else if form.Password != form.Verify {
		verr.Verify = "Your passwords didn't match."
	}
	if form.Email != "" && !emailRE.MatchString(form.Email) {
		verr.Email = "That's not a valid email."
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// Register stores a new user with a freshly salted password hash.
func (s *UserService) Register(ctx context.Context, name, password, email string) (*model.User, error) {
	u, err := s.Repo.Create(ctx, name, auth.HashPassword(name, password, ""), email)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUserExists
	}
	return u, err
}

// Signup validates the form, then registers the user.
func (s *UserService) Signup(ctx context.Context, form model.SignupForm) (*model.User, error) {
	if verr := Validate(form); verr != nil {
		return nil, verr
	}
	return s.Register(ctx, form.Username, form.Password, form.Email)
}

func (s *UserService) Login(ctx context.Context, name, password string) (*model.User, error) {
	u, err := s.Repo.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(name, password, u.PasswordHash) {
		return nil, ErrInvalidLogin
	}
	return u, nil
}

func (s *UserService) ByName(ctx context.Context, name string) (*model.User, error) {
	return s.Repo.GetByName(ctx, name)
}

func (s *UserService) ByID(ctx context.Context, id int64) (*model.User, error) {
	return s.Repo.GetByID(ctx, id)
}
