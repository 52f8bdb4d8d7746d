package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/bymjmazzei/par-noir/internal/validation"
)

// IdentityStatus is the lifecycle status stored inside the payload.
type IdentityStatus string

const (
	StatusActive   IdentityStatus = "active"
	StatusInactive IdentityStatus = "inactive"
)

// Payload is the decrypted identity. It only exists in memory between a
// successful decryption and the end of the call that needed it.
//
// Username is the sole source of truth for who the identity belongs to and is
// never changed after creation.
type Payload struct {
	ID                 string         `json:"id"`
	Username           string         `json:"username"`
	Nickname           string         `json:"nickname"`
	Email              string         `json:"email,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	RecoveryEmail      string         `json:"recoveryEmail,omitempty"`
	RecoveryPhone      string         `json:"recoveryPhone,omitempty"`
	ProfilePicture     string         `json:"profilePicture,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	Status             IdentityStatus `json:"status"`
	CustodiansRequired bool           `json:"custodiansRequired"`
	CustodiansSetup    bool           `json:"custodiansSetup"`
	RecoveryKeys       []RecoveryKey  `json:"recoveryKeys"`
	PrivateKey         string         `json:"privateKey"`
}

// Wipe clears the secret material held by the payload.
func (p *Payload) Wipe() {
	p.PrivateKey = ""
	for i := range p.RecoveryKeys {
		p.RecoveryKeys[i].Key = ""
	}
	p.RecoveryKeys = nil
}

// CreateIdentityInput carries the parameters of identity creation.
type CreateIdentityInput struct {
	Username      string
	Nickname      string
	Passcode      string
	RecoveryEmail string
	RecoveryPhone string
}

var nicknameRules = []validation.Rule{
	validation.Required,
	customValidation.NotBlank,
	customValidation.NoWhitespace,
	validation.Length(1, 64),
}

// ValidateNickname applies the nickname rules used at creation to a rename.
func ValidateNickname(nickname string) error {
	err := validation.Validate(nickname, nicknameRules...)
	if err != nil {
		err = validation.Errors{"nickname": err}
	}
	return customValidation.WrapValidationError(err)
}

// Validate checks the creation input. The passcode policy is
// customValidation.DefaultPasscodeStrength.
func (in *CreateIdentityInput) Validate() error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Username, validation.Required, customValidation.Username),
		validation.Field(&in.Nickname, nicknameRules...),
		validation.Field(&in.Passcode, validation.Required, customValidation.DefaultPasscodeStrength),
		validation.Field(&in.RecoveryEmail, customValidation.Email),
		validation.Field(&in.RecoveryPhone, customValidation.Phone),
	)
	return customValidation.WrapValidationError(err)
}
