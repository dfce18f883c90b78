package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes returned in the "error" field of failed responses.
const (
	CodeValidation          = "DATOS_INVALIDOS"
	CodeRequiredFields      = "DATOS_REQUERIDOS"
	CodeTitleRequired       = "TITULO_REQUERIDO"
	CodeTitleTooLong        = "TITULO_MUY_LARGO"
	CodeDescriptionRequired = "DESCRIPCION_REQUERIDA"
	CodeDescriptionTooShort = "DESCRIPCION_MUY_CORTA"
	CodeDescriptionTooLong  = "DESCRIPCION_MUY_LARGA"
	CodeInvalidCategory     = "CATEGORIA_INVALIDA"
	CodeInvalidPriority     = "PRIORIDAD_INVALIDA"
	CodeCategoryNotFound    = "CATEGORIA_NO_ENCONTRADA"
	CodePriorityNotFound    = "PRIORIDAD_NO_ENCONTRADA"
	CodeEquipmentNotFound   = "EQUIPO_NO_ENCONTRADO"
	CodeInvalidPage         = "PAGINA_INVALIDA"
	CodeInvalidLimit        = "LIMITE_INVALIDO"
	CodeInvalidSort         = "ORDEN_INVALIDO"
	CodeInvalidDirection    = "DIRECCION_INVALIDA"
	CodeInvalidFilter       = "FILTRO_INVALIDO"
	CodeInvalidDate         = "FECHA_INVALIDA"

	CodeTokenRequired      = "TOKEN_REQUERIDO"
	CodeTokenInvalid       = "TOKEN_INVALIDO"
	CodeNotAuthenticated   = "USUARIO_NO_AUTENTICADO"
	CodeInvalidCredentials = "CREDENCIALES_INVALIDAS"
	CodeRoleNotRecognized  = "ROL_NO_RECONOCIDO"
	CodeForbidden          = "PERMISOS_INSUFICIENTES"

	CodeNotFound       = "RECURSO_NO_ENCONTRADO"
	CodeTicketNotFound = "TICKET_NO_ENCONTRADO"

	CodeDuplicate         = "DATOS_DUPLICADOS"
	CodeForeignKey        = "REFERENCIA_INVALIDA"
	CodeInitialStateUnset = "ESTADO_INICIAL_NO_CONFIGURADO"
	CodeInternal          = "ERROR_INTERNO"

	CodeMethodNotAllowed      = "METODO_NO_PERMITIDO"
	CodeDependencyUnavailable = "DEPENDENCIA_NO_DISPONIBLE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports a caller-fixable input problem under a specific code.
func NewValidationError(code, message string) error {
	return NewDomainError(code, message, http.StatusBadRequest, nil)
}

func NewNotFound(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusNotFound, details)
}

func NewUnauthorized(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(code, message string) error {
	return NewDomainError(code, message, http.StatusForbidden, nil)
}

func NewConflict(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusConflict, details)
}

// NewConfigurationError signals a deployment or seed-data defect. Retrying will not help.
func NewConfigurationError(code, message string, err error) error {
	return &DomainError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "error interno del servidor",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}
