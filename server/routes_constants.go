package server

const (
	RouteAuthRegister    = "/auth/register"
	RouteAuthLogin       = "/auth/login"
	RouteAuthRefresh     = "/auth/refresh"
	RouteAuthLogout      = "/auth/logout"
	RouteAuthValidate    = "/auth/validate"
	RouteAuthGoogle      = "/auth/google"
	RouteAuthGoogleCB    = "/auth/google/redirect"
	RouteAuthGithub      = "/auth/github"
	RouteAuthGithubCB    = "/auth/github/redirect"
	RouteBlogPosts       = "/blog/posts"
	RouteBlogPostByID    = "/blog/posts/{id}"
	RouteBlogPostBySlug  = "/blog/slug/{slug}"
	RouteBlogSearch      = "/blog/search"
)
