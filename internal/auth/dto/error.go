package dto

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error             string     `json:"error"`
	Message           string     `json:"message"`
	RemainingAttempts *int       `json:"intentos_restantes,omitempty"`
	LockedUntil       *time.Time `json:"bloqueado_hasta,omitempty"`
	Contact           string     `json:"contacto,omitempty"`
	Detail            string     `json:"detail,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RevokeSessionsResponse struct {
	Message        string `json:"message"`
	ClosedSessions int64  `json:"sesiones_cerradas"`
}
