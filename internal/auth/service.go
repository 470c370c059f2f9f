package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"fintra/internal/apperr"

	"github.com/sirupsen/logrus"
)

const MinPasswordLength = 5

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service handles account registration and login.
type Service struct {
	Users    IdentityStore
	Hasher   *Hasher
	Tokens   *JWT
	TokenTTL time.Duration
	Log      logrus.FieldLogger
}

// Session is a successful registration or login.
type Session struct {
	User  *User
	Token string
}

func ValidateCredentials(email, password string) error {
	if !emailRe.MatchString(email) {
		return apperr.Validation("invalid email")
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least 5 characters")
	}
	return nil
}

// Register creates the account and signs the new user in.
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// CreateAccount stores a new user without issuing a token.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(password, salt)
	if err != nil {
		return nil, err
	}

	u := &User{Email: email, PasswordHash: hash, Salt: salt}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if !emailRe.MatchString(email) || password == "" {
		return nil, apperr.Validation("invalid email or password format")
	}

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := s.Hasher.Verify(u.PasswordHash, password)
	if err != nil {
		s.Log.WithField("user_id", u.ID).WithError(err).Error("stored credential is corrupt")
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.ErrAuthentication, "wrong password")
	}

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, password)
	}

	return s.session(u)
}

// rehash upgrades the stored hash to current parameters. Failure only costs
// the upgrade, never the login.
func (s *Service) rehash(ctx context.Context, u *User, password string) {
	log := s.Log.WithField("user_id", u.ID)

	salt := u.Salt
	if len(salt) == 0 {
		var err error
		if salt, err = NewSalt(); err != nil {
			log.WithError(err).Warn("password rehash skipped")
			return
		}
	}
	hash, err := s.Hasher.Hash(password, salt)
	if err == nil {
		err = s.Users.UpdatePasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrStoreUnavailable) {
			log.Warn("password rehash skipped: store unavailable")
		} else {
			log.WithError(err).Warn("password rehash failed")
		}
		return
	}
	u.PasswordHash = hash
	log.Info("password rehashed")
}

func (s *Service) session(u *User) (*Session, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	token, err := s.Tokens.Issue(u.Email, ttl)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}
