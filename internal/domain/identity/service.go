package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/errs"
)

// Service implements account management and login.
type Service struct {
	users  UserRepository
	tokens *auth.TokenIssuer
}

func NewService(users UserRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// RegisterInput carries the fields needed to create an account. The plaintext
// password never leaves this struct unhashed.
type RegisterInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Role     Role    `json:"role"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Register creates a user account with a bcrypt password hash. The enterprise
// is derived from the role rather than taken from input.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" {
		return nil, errs.Invalid("username is required")
	}
	if len(in.Password) < 8 {
		return nil, errs.Invalid("password must be at least 8 characters")
	}
	if in.FullName == "" {
		return nil, errs.Invalid("full name is required")
	}
	if !in.Role.Valid() {
		return nil, errs.Invalid("unknown role %q", in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		Enterprise:   EnterpriseFor(in.Role),
		Email:        in.Email,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login checks credentials and issues a signed token. Unknown usernames and
// wrong passwords both come back as KindUnauthorized so callers cannot probe
// for valid accounts.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return nil, errs.E(errs.KindUnauthorized, "invalid username or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errs.E(errs.KindUnauthorized, "invalid username or password")
	}

	token, err := s.tokens.Issue(u.ID, string(u.Role), string(u.Enterprise))
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", u.Username).Msg("login")
	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	if !role.Valid() {
		return nil, errs.Invalid("unknown role %q", role)
	}
	return s.users.ListByRole(ctx, role)
}

// UpdateInput carries the mutable account fields. Username and password are
// not changed here.
type UpdateInput struct {
	FullName string  `json:"full_name"`
	Role     Role    `json:"role"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FullName == "" {
		return nil, errs.Invalid("full name is required")
	}
	if !in.Role.Valid() {
		return nil, errs.Invalid("unknown role %q", in.Role)
	}
	u.FullName = in.FullName
	u.Role = in.Role
	u.Enterprise = EnterpriseFor(in.Role)
	u.Email = in.Email
	u.Phone = in.Phone
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// DoctorExists reports whether the given user exists and holds the doctor
// role. Appointment and prescription booking use this to validate the
// prescriber before writing.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Role == RoleDoctor, nil
}
