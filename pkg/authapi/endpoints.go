package authapi

// Endpoints are the paths of the auth API, relative to the base URL.
type Endpoints struct {
	Login    string
	Register string
	Refresh  string
	Logout   string
}

// UserEndpoints returns the endpoints of end-user sessions.
func UserEndpoints() Endpoints {
	return Endpoints{
		Login:    "/api/auth/login",
		Register: "/api/auth/register",
		Refresh:  "/api/auth/refresh",
		Logout:   "/api/auth/logout",
	}
}

// AdminEndpoints returns the endpoints of administrator sessions.
func AdminEndpoints() Endpoints {
	return Endpoints{
		Login:    "/api/admin/login",
		Register: "/api/admin/register",
		Refresh:  "/api/admin/refresh",
		Logout:   "/api/admin/logout",
	}
}
