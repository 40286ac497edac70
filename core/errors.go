package core

import "net/http"

// APIError is a client-visible error with a stable machine code and a
// localized human message. It renders as {"error":{"code":...,"message":...}}.
// Internal error details never cross this boundary.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Code
}

// Error taxonomy shared by every mutating route. Messages are fixed Spanish
// strings; the code is the contract, the message is presentation.
var (
	ErrCSRFValidationFailed = APIError{
		Status:  http.StatusForbidden,
		Code:    "CSRF_VALIDATION_FAILED",
		Message: "La validación de seguridad de la petición ha fallado.",
	}
	ErrUnauthenticated = APIError{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHENTICATED",
		Message: "Debes iniciar sesión para realizar esta acción.",
	}
	ErrRateLimitExceeded = APIError{
		Status:  http.StatusTooManyRequests,
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "Has realizado demasiadas peticiones. Inténtalo de nuevo en unos segundos.",
	}
	ErrQuotaExceeded = APIError{
		Status:  http.StatusForbidden,
		Code:    "QUOTA_EXCEEDED",
		Message: "Has alcanzado el límite de conversiones de tu plan este mes.",
	}
	ErrRegenerateLimitExceeded = APIError{
		Status:  http.StatusForbidden,
		Code:    "REGENERATE_LIMIT_EXCEEDED",
		Message: "Has alcanzado el límite de regeneraciones para esta conversión.",
	}
	ErrInvalidInput = APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_INPUT",
		Message: "Los datos enviados no son válidos.",
	}
	ErrInvalidToken = APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_TOKEN",
		Message: "El enlace no es válido o está incompleto.",
	}
	ErrNotFound = APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "El recurso solicitado no existe.",
	}
	ErrInternal = APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Ha ocurrido un error inesperado. Inténtalo de nuevo más tarde.",
	}
)
