package handler

import "github.com/inmobiliaria/backend/internal/interfaces/http/dto"

// Swagger shapes of the dto.Response envelope. Handlers write dto.Response;
// these only exist so the annotations can name a typed payload.

// APIResponse is a successful envelope carrying T
// @Description Successful response; list endpoints add meta
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is a failed envelope
// @Description Failed response with a stable error code
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
