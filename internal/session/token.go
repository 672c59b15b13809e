package session

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"

	"taskdeck/internal/kv"
)

// ErrNoToken is returned when no token is stored.
var ErrNoToken = errors.New("not logged in")

func (s *Store) token(ctx context.Context) (string, error) {
	return readToken(ctx, s.kv)
}

func readToken(ctx context.Context, store kv.Store) (string, error) {
	data, err := store.Get(ctx, kv.KeyToken)
	if errors.Is(err, kv.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

type tokenSource struct {
	kv kv.Store
}

// TokenSource returns an oauth2.TokenSource that reads the stored token on
// every call, so login and logout take effect immediately.
func TokenSource(store kv.Store) oauth2.TokenSource {
	return tokenSource{kv: store}
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	tok, err := readToken(context.Background(), ts.kv)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// HasToken reports whether a token is stored.
func (s *Store) HasToken(ctx context.Context) bool {
	_, err := s.token(ctx)
	return err == nil
}
