package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource exposes the stored session as an oauth2.TokenSource, so HTTP
// clients built with oauth2.NewClient attach the current bearer token.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, m: m}
}

type tokenSource struct {
	ctx context.Context
	m   *Manager
}

// Token returns ErrNoSession when no unexpired token is stored.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	data, err := s.m.GetAuthData(s.ctx)
	if err != nil {
		return nil, err
	}
	if data.Token == "" || data.IsExpired {
		return nil, ErrNoSession
	}

	return &oauth2.Token{
		AccessToken:  data.Token,
		TokenType:    "Bearer",
		RefreshToken: data.RefreshToken,
		Expiry:       data.ExpiresAt,
	}, nil
}
