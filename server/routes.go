package server

func (s *Server) initRoutes() {
	// AUTH
	s.mux.HandleFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
	s.mux.HandleFunc("POST "+RouteAuthValidate, ChainMiddleware(s.ValidateCredentialsHandler(), s.APIMiddleware()...))

	// FEDERATED LOGIN
	s.mux.HandleFunc("GET "+RouteAuthGoogle, ChainMiddleware(s.OAuthRedirectHandler(providerGoogle), s.APIMiddleware()...))
	s.mux.HandleFunc("GET "+RouteAuthGoogleCB, ChainMiddleware(s.OAuthCallbackHandler(providerGoogle), s.APIMiddleware()...))
	s.mux.HandleFunc("GET "+RouteAuthGithub, ChainMiddleware(s.OAuthRedirectHandler(providerGithub), s.APIMiddleware()...))
	s.mux.HandleFunc("GET "+RouteAuthGithubCB, ChainMiddleware(s.OAuthCallbackHandler(providerGithub), s.APIMiddleware()...))

	// BLOG
	s.mux.HandleFunc("GET "+RouteBlogPosts, ChainMiddleware(s.ListPostsHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("GET "+RouteBlogPostBySlug, ChainMiddleware(s.GetPostHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("GET "+RouteBlogSearch, ChainMiddleware(s.SearchPostsHandler(), s.APIMiddleware()...))
	s.mux.HandleFunc("POST "+RouteBlogPosts, ChainMiddleware(s.CreatePostHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
	s.mux.HandleFunc("PUT "+RouteBlogPostByID, ChainMiddleware(s.UpdatePostHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
	s.mux.HandleFunc("DELETE "+RouteBlogPostByID, ChainMiddleware(s.DeletePostHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
}
