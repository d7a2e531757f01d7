package domain

import "time"

type Role string

const (
	RoleSigner Role = "signer"
	RoleViewer Role = "viewer"
)

func ParseRole(s string) (Role, bool) {
	switch s {
	case "", string(RoleSigner):
		return RoleSigner, true
	case string(RoleViewer):
		return RoleViewer, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ContentSource records which canonical byte source the fingerprint was
// computed from. Verification must read the same source.
type ContentSource string

const (
	SourceText ContentSource = "text"
	SourceFile ContentSource = "file"
)

// Participant is a principal's role assignment on one document.
type Participant struct {
	PrincipalID string `json:"principalId"`
	Role        Role   `json:"role"`
}

// Signature is one entry of the append-only ledger.
type Signature struct {
	PrincipalID string    `json:"principalId"`
	Value       string    `json:"signature"`
	SignedAt    time.Time `json:"signedAt"`
}

type Document struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content,omitempty"`
	ContentSource ContentSource `json:"contentSource"`
	FileName      string        `json:"fileName,omitempty"`
	Fingerprint   string        `json:"fingerprint"`
	CreatorID     string        `json:"creatorId"`
	Participants  []Participant `json:"participants"`
	Signatures    []Signature   `json:"signatures"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

// ParticipantRole reports the role a principal holds on the document.
func (d *Document) ParticipantRole(principalID string) (Role, bool) {
	for _, p := range d.Participants {
		if p.PrincipalID == principalID {
			return p.Role, true
		}
	}
	return "", false
}

func (d *Document) HasSigned(principalID string) bool {
	return HasSigned(d.Signatures, principalID)
}

// AuthorizeSigner decides whether caller may append a signature. The creator
// may always sign; otherwise the caller must hold the signer role. The two
// denial reasons stay distinguishable so callers can tell "wrong role" from
// "not invited".
func AuthorizeSigner(callerID string, creatorID string, participants []Participant) error {
	if callerID == creatorID {
		return nil
	}
	for _, p := range participants {
		if p.PrincipalID != callerID {
			continue
		}
		if p.Role == RoleSigner {
			return nil
		}
		return ForbiddenError{Reason: ForbiddenWrongRole, Role: p.Role}
	}
	return ForbiddenError{Reason: ForbiddenNotInvited}
}

func HasSigned(signatures []Signature, principalID string) bool {
	for _, s := range signatures {
		if s.PrincipalID == principalID {
			return true
		}
	}
	return false
}

// AllSigned reports whether every signer-role participant has a ledger entry.
// The creator is counted only when listed as a signer participant. Evaluated
// from the full sets on every append, never incrementally.
func AllSigned(participants []Participant, signatures []Signature) bool {
	for _, p := range participants {
		if p.Role != RoleSigner {
			continue
		}
		if !HasSigned(signatures, p.PrincipalID) {
			return false
		}
	}
	return true
}
