package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Input errors

// InputError reports a request that cannot be processed as given: bad JSON
// shapes, missing required fields, mismatched array sizes, illegal values.
type InputError struct {
	*DomainError
	Field string
}

func NewInputError(field, message string) *InputError {
	return &InputError{
		DomainError: &DomainError{Message: message},
		Field:       field,
	}
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing dataset, instance file, or registered name.
type NotFoundError struct {
	*DomainError
	Resource string
	Name     string
}

func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %q not found", resource, name)},
		Resource:    resource,
		Name:        name,
	}
}

// ConflictError reports a refused overwrite of an existing resource.
type ConflictError struct {
	*DomainError
	Resource string
}

func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		DomainError: &DomainError{Message: message},
		Resource:    resource,
	}
}

// Matrix provider errors

// MatrixRequestError reports an upstream matrix provider failure. StatusText
// carries the provider's own status or body text so callers can see what the
// remote service said.
type MatrixRequestError struct {
	*DomainError
	Provider   string
	StatusText string
}

func NewMatrixRequestError(provider, statusText, message string) *MatrixRequestError {
	return &MatrixRequestError{
		DomainError: &DomainError{Message: message},
		Provider:    provider,
		StatusText:  statusText,
	}
}

func (e *MatrixRequestError) Error() string {
	if e.StatusText != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.StatusText)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// APIKeyMissingError reports a provider that cannot be constructed because its
// credential is absent. The bootstrap treats this as "skip this provider".
type APIKeyMissingError struct {
	*DomainError
	Provider string
}

func NewAPIKeyMissingError(provider, variable string) *APIKeyMissingError {
	return &APIKeyMissingError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s is not configured (missing %s)", provider, variable)},
		Provider:    provider,
	}
}

// Solver errors

// InfeasibleError reports an instance that violates a hard precondition:
// demand exceeding fleet capacity, unreachable time windows, or a model whose
// constraints admit no solution.
type InfeasibleError struct {
	*DomainError
}

func NewInfeasibleError(message string) *InfeasibleError {
	return &InfeasibleError{DomainError: &DomainError{Message: message}}
}

// EngineError reports an internal failure inside a solver engine. Engine names
// the plugin so the response can identify which backend broke.
type EngineError struct {
	*DomainError
	Engine string
}

func NewEngineError(engine, message string) *EngineError {
	return &EngineError{
		DomainError: &DomainError{Message: message},
		Engine:      engine,
	}
}

func (e *EngineError) Error() string {
	if e.Engine == "" {
		return e.Message
	}
	return fmt.Sprintf("engine %s: %s", e.Engine, e.Message)
}

// EngineStoppedError reports an engine that ran out of budget before finding
// an integer-feasible solution. The message carries a remediation hint.
type EngineStoppedError struct {
	*EngineError
}

func NewEngineStoppedError(engine string) *EngineStoppedError {
	return &EngineStoppedError{
		EngineError: NewEngineError(engine,
			"stopped before finding an integer-feasible solution; try increasing time_limit (e.g., 180-300s) or relaxing time windows/capacity"),
	}
}

// ValidationError reports a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
