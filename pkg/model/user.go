package model

// AdminCredentials is used for login requests
type AdminCredentials struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the admin session token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
