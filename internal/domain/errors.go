package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrTransactionAborted  = errors.New("transacción abortada")
	ErrIdempotencyInFlight = errors.New("solicitud con la misma llave de idempotencia en proceso")
)

// IsDomainError indica si err (o alguno de sus envoltorios) es un error de negocio conocido.
// Los errores de negocio atraviesan el runner de transacciones sin reclasificarse.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrInvalidState, ErrInsufficientStock,
		ErrDuplicate, ErrTransactionAborted, ErrIdempotencyInFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
