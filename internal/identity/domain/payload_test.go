package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

func TestCreateIdentityInput_Validate(t *testing.T) {
	valid := func() CreateIdentityInput {
		return CreateIdentityInput{
			Username:      "alice",
			Nickname:      "Alice W",
			Passcode:      "correct-horse",
			RecoveryEmail: "alice@example.com",
			RecoveryPhone: "+14155552671",
		}
	}

	t.Run("valid", func(t *testing.T) {
		in := valid()
		assert.NoError(t, in.Validate())
	})

	t.Run("optional recovery fields", func(t *testing.T) {
		in := valid()
		in.RecoveryEmail = ""
		in.RecoveryPhone = ""
		assert.NoError(t, in.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*CreateIdentityInput)
	}{
		{name: "missing username", mutate: func(in *CreateIdentityInput) { in.Username = "" }},
		{name: "invalid username", mutate: func(in *CreateIdentityInput) { in.Username = "a b" }},
		{name: "missing nickname", mutate: func(in *CreateIdentityInput) { in.Nickname = "" }},
		{name: "padded nickname", mutate: func(in *CreateIdentityInput) { in.Nickname = " Alice " }},
		{name: "weak passcode", mutate: func(in *CreateIdentityInput) { in.Passcode = "short" }},
		{name: "invalid recovery email", mutate: func(in *CreateIdentityInput) { in.RecoveryEmail = "alice" }},
		{name: "invalid recovery phone", mutate: func(in *CreateIdentityInput) { in.RecoveryPhone = "call me" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			assert.ErrorIs(t, in.Validate(), apperrors.ErrInvalidInput)
		})
	}
}

func TestPayload_Wipe(t *testing.T) {
	p := &Payload{
		Username:   "alice",
		PrivateKey: "private",
		RecoveryKeys: []RecoveryKey{
			{Purpose: PurposePersonal, Key: "one"},
			{Purpose: PurposeLegal, Key: "two"},
		},
	}
	keys := p.RecoveryKeys

	p.Wipe()

	assert.Empty(t, p.PrivateKey)
	assert.Nil(t, p.RecoveryKeys)
	assert.Empty(t, keys[0].Key)
	assert.Empty(t, keys[1].Key)
	assert.Equal(t, "alice", p.Username)
}

func TestValidateNickname(t *testing.T) {
	assert.NoError(t, ValidateNickname("Alice W"))

	for _, nickname := range []string{"", "   ", " padded", strings.Repeat("n", 65)} {
		err := ValidateNickname(nickname)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, nickname)
	}
}
