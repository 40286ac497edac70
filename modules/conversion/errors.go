package conversion

import "errors"

var (
	ErrConversionNotFound = errors.New("conversion: not found")
	ErrQuotaExceeded      = errors.New("conversion: monthly quota exceeded")
	ErrRegenerateLimit    = errors.New("conversion: regeneration limit reached")
	ErrInvalidInput       = errors.New("conversion: invalid input")
	ErrGenerationFailed   = errors.New("conversion: generation backend failed")
)
