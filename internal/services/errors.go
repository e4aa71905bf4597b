package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Common service errors. Handlers map them to HTTP statuses with errors.Is,
// so callers wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	ErrNotFound        = errors.New("registro no encontrado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrValidation      = errors.New("datos inválidos")
	ErrInvalidState    = errors.New("estado inválido")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrAlreadyVoted    = errors.New("el votante ya emitió su voto")
	ErrElectionStarted = errors.New("la elección ya comenzó y no puede modificarse")
	ErrProtectedEntity = errors.New("el registro del voto en blanco está protegido")
)

// notFound translates a missing record into ErrNotFound and passes any other
// error through unchanged
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return err
}
