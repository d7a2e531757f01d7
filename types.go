package docutrust

import (
	"time"
)

// SignerInput is one entry of the participant list supplied at document
// creation. Role defaults to "signer" when empty.
type SignerInput struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type CreateDocumentRequest struct {
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatorID string        `json:"creatorId,omitempty"`
	Signers   []SignerInput `json:"signers"`
}

type SignRequest struct {
	SignerID  string `json:"signerId,omitempty"`
	Signature string `json:"signature"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	PublicKey string `json:"publicKey"`
}

// SignatureVerification is the audit outcome for a single ledger entry.
// Unverifiable means the check could not be performed at all (missing
// principal, missing key, unparsable signature) as opposed to a processed
// signature that simply does not match.
type SignatureVerification struct {
	PrincipalID  string    `json:"principalId"`
	Email        string    `json:"email,omitempty"`
	SignedAt     time.Time `json:"signedAt"`
	Verified     bool      `json:"verified"`
	Unverifiable bool      `json:"unverifiable,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

type VerificationReport struct {
	DocumentID        string                  `json:"documentId"`
	Fingerprint       string                  `json:"fingerprint"`
	StoredFingerprint string                  `json:"storedFingerprint"`
	NothingToVerify   bool                    `json:"nothingToVerify,omitempty"`
	Results           []SignatureVerification `json:"results"`
}

// Wire mirrors of the server's document resources, used by the API client.

type Principal struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName,omitempty"`
	PublicKey string `json:"publicKey"`
}

type Participant struct {
	PrincipalID string `json:"principalId"`
	Role        string `json:"role"`
}

type Signature struct {
	PrincipalID string    `json:"principalId"`
	Value       string    `json:"signature"`
	SignedAt    time.Time `json:"signedAt"`
}

type Document struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content,omitempty"`
	ContentSource string        `json:"contentSource"`
	FileName      string        `json:"fileName,omitempty"`
	Fingerprint   string        `json:"fingerprint"`
	CreatorID     string        `json:"creatorId"`
	Participants  []Participant `json:"participants"`
	Signatures    []Signature   `json:"signatures"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

type DashboardResponse struct {
	Created    []Document `json:"createdDocuments"`
	NeedToSign []Document `json:"needToSignDocuments"`
	Signed     []Document `json:"signedDocuments"`
}

const (
	EventDocumentCreated   = "document.created"
	EventDocumentSigned    = "document.signed"
	EventDocumentCompleted = "document.completed"
)

// Event is published on the document's redis channel after every state
// change and relayed to websocket subscribers.
type Event struct {
	Type        string    `json:"type"`
	DocumentID  string    `json:"documentId"`
	PrincipalID string    `json:"principalId,omitempty"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func EventChannel(documentID string) string {
	return "document:" + documentID
}
