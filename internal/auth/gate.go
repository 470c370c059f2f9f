package auth

import (
	"context"
	"errors"

	"fintra/internal/apperr"
)

type TokenValidator interface {
	Validate(token string) (Claims, error)
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Gate resolves a raw session token into an Identity.
//
//	no token                         -> anonymous
//	bad signature or malformed       -> apperr.ErrAuthentication
//	expired                          -> anonymous
//	valid, subject no longer exists  -> anonymous
//	valid, subject exists            -> authenticated
type Gate struct {
	Tokens TokenValidator
	Users  UserFinder
}

func NewGate(tokens TokenValidator, users UserFinder) *Gate {
	return &Gate{Tokens: tokens, Users: users}
}

func (g *Gate) Authenticate(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, nil
	}

	claims, err := g.Tokens.Validate(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Identity{}, nil
		}
		return Identity{}, apperr.Wrap(apperr.ErrAuthentication, "invalid session token", err)
	}

	u, err := g.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Identity{}, nil
		}
		return Identity{}, err
	}
	return Identity{UserID: u.ID, Email: u.Email}, nil
}
