package httpdto

// PingResponse is returned by GET /ping
type PingResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health when the database answers.
type HealthResponse struct {
	Status string `json:"status"`
}
