package models

import (
	"time"
)

type Principal struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Username  string    `json:"username" gorm:"type:text;index:principal_username,unique"`
	Email     string    `json:"email" gorm:"type:text;index:principal_email,unique"`
	FullName  string    `json:"fullName" gorm:"type:text"`
	PublicKey string    `json:"publicKey" gorm:"type:text;not null"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Document struct {
	ID            string     `json:"id" gorm:"primaryKey;type:text"`
	Title         string     `json:"title" gorm:"type:text"`
	Content       string     `json:"content" gorm:"type:text"`
	ContentSource string     `json:"contentSource" gorm:"type:text;not null"`
	FileName      string     `json:"fileName" gorm:"type:text"`
	Fingerprint   string     `json:"fingerprint" gorm:"type:text;not null"`
	CreatorID     string     `json:"creatorId" gorm:"type:text;index"`
	Creator       Principal  `json:"-" gorm:"foreignKey:CreatorID;references:ID"`
	Status        string     `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"type:timestamp with time zone;not null"`
	CompletedAt   *time.Time `json:"completedAt" gorm:"type:timestamp with time zone"`
}

type Participant struct {
	DocumentID  string   `json:"documentId" gorm:"primaryKey;type:text"`
	Document    Document `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	PrincipalID string   `json:"principalId" gorm:"primaryKey;type:text;index"`
	Role        string   `json:"role" gorm:"type:text;not null"`
	Position    int      `json:"position" gorm:"not null"`
}

// Signature rows are append-only; the composite primary key is what makes
// one-signature-per-principal hold under concurrent inserts.
type Signature struct {
	DocumentID  string    `json:"documentId" gorm:"primaryKey;type:text"`
	Document    Document  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	PrincipalID string    `json:"principalId" gorm:"primaryKey;type:text;index"`
	Value       string    `json:"signature" gorm:"type:text;not null"`
	SignedAt    time.Time `json:"signedAt" gorm:"type:timestamp with time zone;not null"`
}
