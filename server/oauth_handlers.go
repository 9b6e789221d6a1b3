package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/jrsteele09/go-blog-server/internal/config"
	"github.com/jrsteele09/go-blog-server/users"
)

const (
	providerGoogle = "google"
	providerGithub = "github"

	oauthStateCookie = "oauth_state"
	googleIssuer     = "https://accounts.google.com"
	githubUserAPI    = "https://api.github.com/user"
)

// oauthProviders holds the configured federated identity providers. The
// protocol mechanics live here; a successful callback always funnels into
// the auth service's LoginFederated, the same issuance path as password login.
type oauthProviders struct {
	google *oauth2.Config
	github *oauth2.Config

	googleOidcLock     sync.Mutex
	googleOidcVerifier *oidc.IDTokenVerifier
}

func newOAuthProviders(cfg config.Config) *oauthProviders {
	p := &oauthProviders{}

	if cfg.GetGoogleClientID() != "" {
		p.google = &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetBaseURL() + RouteAuthGoogleCB,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			// Endpoint filled in from OIDC discovery on first use
		}
	}

	if cfg.GetGithubClientID() != "" {
		p.github = &oauth2.Config{
			ClientID:     cfg.GetGithubClientID(),
			ClientSecret: cfg.GetGithubClientSecret(),
			RedirectURL:  cfg.GetBaseURL() + RouteAuthGithubCB,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return p
}

func (p *oauthProviders) configFor(provider string) *oauth2.Config {
	switch provider {
	case providerGoogle:
		return p.google
	case providerGithub:
		return p.github
	}
	return nil
}

// googleVerifier lazily runs OIDC discovery against Google and caches the
// resulting ID-token verifier. Discovery also fills in the oauth2 endpoint.
func (p *oauthProviders) googleVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.googleOidcLock.Lock()
	defer p.googleOidcLock.Unlock()

	if p.googleOidcVerifier != nil {
		return p.googleOidcVerifier, nil
	}

	oidcProvider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("[oauthProviders.googleVerifier] OIDC discovery: %w", err)
	}
	p.google.Endpoint = oidcProvider.Endpoint()
	p.googleOidcVerifier = oidcProvider.Verifier(&oidc.Config{ClientID: p.google.ClientID})
	return p.googleOidcVerifier, nil
}

// OAuthRedirectHandler initiates the redirect-based identity-provider login.
func (s *Server) OAuthRedirectHandler(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := s.oauth.configFor(provider)
		if cfg == nil {
			writeError(w, http.StatusNotFound, provider+" login is not configured")
			return
		}

		if provider == providerGoogle {
			if _, err := s.oauth.googleVerifier(r.Context()); err != nil {
				s.log.Error().Err(err).Msg("google OIDC discovery failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		}

		state, err := generateState()
		if err != nil {
			s.log.Error().Err(err).Msg("failed to generate OAuth state")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/auth",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the identity-provider handshake and issues
// a token pair for the federated identity.
func (s *Server) OAuthCallbackHandler(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := s.oauth.configFor(provider)
		if cfg == nil {
			writeError(w, http.StatusNotFound, provider+" login is not configured")
			return
		}

		// CSRF check: the state must round-trip through the cookie
		cookie, err := r.Cookie(oauthStateCookie)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			writeError(w, http.StatusUnauthorized, "invalid state parameter")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "missing code parameter")
			return
		}

		oauth2Token, err := cfg.Exchange(r.Context(), code)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", provider).Msg("token exchange failed")
			writeError(w, http.StatusUnauthorized, "token exchange failed")
			return
		}

		var identity users.Provider
		var email, name string
		switch provider {
		case providerGoogle:
			identity, email, name, err = s.googleIdentity(r.Context(), oauth2Token)
		case providerGithub:
			identity, email, name, err = s.githubIdentity(r.Context(), cfg, oauth2Token)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("provider", provider).Msg("identity lookup failed")
			writeError(w, http.StatusUnauthorized, "identity verification failed")
			return
		}

		pair, err := s.auth.LoginFederated(r.Context(), identity, email, name)
		if err != nil {
			s.log.Error().Err(err).Str("provider", provider).Msg("federated login failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// googleIdentity verifies the ID token from the exchange and extracts the
// Google identity claims.
func (s *Server) googleIdentity(ctx context.Context, oauth2Token *oauth2.Token) (users.Provider, string, string, error) {
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return users.Provider{}, "", "", fmt.Errorf("no ID token in response")
	}

	verifier, err := s.oauth.googleVerifier(ctx)
	if err != nil {
		return users.Provider{}, "", "", err
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return users.Provider{}, "", "", fmt.Errorf("ID token verification failed: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return users.Provider{}, "", "", fmt.Errorf("failed to extract claims: %w", err)
	}
	if claims.Email == "" {
		return users.Provider{}, "", "", fmt.Errorf("ID token missing email claim")
	}

	return users.Provider{Name: providerGoogle, ID: claims.Sub}, claims.Email, claims.Name, nil
}

// githubIdentity fetches the authenticated GitHub user via the REST API.
func (s *Server) githubIdentity(ctx context.Context, cfg *oauth2.Config, oauth2Token *oauth2.Token) (users.Provider, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserAPI, nil)
	if err != nil {
		return users.Provider{}, "", "", err
	}
	res, err := cfg.Client(ctx, oauth2Token).Do(req)
	if err != nil {
		return users.Provider{}, "", "", fmt.Errorf("github user lookup failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return users.Provider{}, "", "", fmt.Errorf("github user lookup returned %d", res.StatusCode)
	}

	var ghUser struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ghUser); err != nil {
		return users.Provider{}, "", "", fmt.Errorf("failed to decode github user: %w", err)
	}
	if ghUser.Email == "" {
		return users.Provider{}, "", "", fmt.Errorf("github account has no public email")
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}
	return users.Provider{Name: providerGithub, ID: fmt.Sprintf("%d", ghUser.ID)}, ghUser.Email, name, nil
}

func generateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
