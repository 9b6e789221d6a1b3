// Package server wires the auth and blog services onto an HTTP API.
package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/blog"
	"github.com/jrsteele09/go-blog-server/internal/config"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	config config.Config
	auth   *auth.Service
	blog   *blog.Service
	oauth  *oauthProviders
	log    zerolog.Logger
}

func New(cfg config.Config, authService *auth.Service, blogService *blog.Service, log zerolog.Logger) (*Server, error) {
	if authService == nil {
		return nil, fmt.Errorf("[Server.New] auth service is required")
	}
	if blogService == nil {
		return nil, fmt.Errorf("[Server.New] blog service is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		blog:   blogService,
		log:    log,
	}
	s.oauth = newOAuthProviders(cfg)
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
