package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

type ForbiddenReason string

const (
	ForbiddenWrongRole  ForbiddenReason = "wrong_role"
	ForbiddenNotInvited ForbiddenReason = "not_invited"
)

// ForbiddenError represents an authenticated caller lacking permission to
// sign. Reason distinguishes a participant with the wrong role from a
// principal absent from the participant list.
type ForbiddenError struct {
	Reason ForbiddenReason
	Role   Role
}

func (e ForbiddenError) Error() string {
	switch e.Reason {
	case ForbiddenWrongRole:
		return fmt.Sprintf("principal holds role '%s' on this document; only the creator or a 'signer' participant may sign", e.Role)
	case ForbiddenNotInvited:
		return "principal is neither the creator nor among the designated participants of this document"
	default:
		return "principal is not permitted to sign this document"
	}
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// ConflictError represents a duplicate signature attempt.
type ConflictError struct {
	PrincipalID string
}

func (e ConflictError) Error() string {
	return "principal has already signed this document"
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

type InvalidInputKind string

const (
	InvalidInputMissingFields      InvalidInputKind = "missing_fields"
	InvalidInputInvalidRole        InvalidInputKind = "invalid_role"
	InvalidInputUnknownParticipant InvalidInputKind = "unknown_participant"
	InvalidInputMalformed          InvalidInputKind = "invalid_input"
)

// InvalidInputError represents missing or malformed fields, a bad role value
// or an unresolvable participant identifier.
type InvalidInputError struct {
	Kind   InvalidInputKind
	Detail string
}

func (e InvalidInputError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return e.Detail
}

func (e InvalidInputError) Is(target error) bool {
	_, ok := target.(InvalidInputError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidInputError)
	return ok
}

var ErrInvalidInput = InvalidInputError{}

func MissingFields(detail string) InvalidInputError {
	return InvalidInputError{Kind: InvalidInputMissingFields, Detail: detail}
}

func InvalidRole(role string) InvalidInputError {
	return InvalidInputError{Kind: InvalidInputInvalidRole, Detail: fmt.Sprintf("role must be 'signer' or 'viewer', got '%s'", role)}
}

func UnknownParticipant(identifier string) InvalidInputError {
	return InvalidInputError{Kind: InvalidInputUnknownParticipant, Detail: fmt.Sprintf("no registered principal for '%s'", identifier)}
}

// CryptoError represents a signature or key that could not even be processed,
// distinct from a processed signature that fails to match.
type CryptoError struct {
	Detail string
}

func (e CryptoError) Error() string {
	if e.Detail == "" {
		return "cryptographic processing failed"
	}
	return e.Detail
}

func (e CryptoError) Is(target error) bool {
	_, ok := target.(CryptoError)
	if ok {
		return true
	}
	_, ok = target.(*CryptoError)
	return ok
}

var ErrCrypto = CryptoError{}
