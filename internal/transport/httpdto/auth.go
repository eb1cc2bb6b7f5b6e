package httpdto

// RegisterRequest is used for POST /api/auth/register. No field is required.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the fixed registration placeholder body.
type RegisterResponse struct {
	Msg string `json:"msg"`
}

// LoginRequest is used for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the constant placeholder token.
type LoginResponse struct {
	Token string `json:"token"`
}
