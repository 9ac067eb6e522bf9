package identity

// TokenRequest is the body of a harness token request.
type TokenRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}
