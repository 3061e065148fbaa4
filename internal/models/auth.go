package models

// LoginRequest is the credentials body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse keeps the success/message envelope the site's login form reads.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AdminUser is the identity attached to an admin request after token introspection.
type AdminUser struct {
	Username string `json:"username"`
	Subject  string `json:"sub,omitempty"`
}
