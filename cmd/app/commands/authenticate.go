package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

type sessionView struct {
	ID              string    `json:"id"              yaml:"id"`
	PNName          string    `json:"pnName"          yaml:"pnName"`
	Nickname        string    `json:"nickname"        yaml:"nickname"`
	AccessToken     string    `json:"accessToken"     yaml:"accessToken"`
	ExpiresIn       int       `json:"expiresIn"       yaml:"expiresIn"`
	AuthenticatedAt time.Time `json:"authenticatedAt" yaml:"authenticatedAt"`
	PublicKey       string    `json:"publicKey"       yaml:"publicKey"`
}

// RunAuthenticate unlocks the active version of publicKey and prints the
// resulting session. Every failure cause is reported as the same error.
func RunAuthenticate(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	io IOTuple,
	publicKey, passcodeFlag, username, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	passcode, err := readPasscode(passcodeFlag, io.Reader)
	if err != nil {
		return err
	}

	session, err := wallet.Login(ctx, publicKey, passcode, username)
	if err != nil {
		logger.Warn("authentication failed")
		return collapseAuthError(err)
	}

	if format == FormatText {
		_, _ = fmt.Fprintf(io.Writer, "Authenticated as %s\n", session.PNName)
		_, _ = fmt.Fprintf(io.Writer, "DID: %s\n", session.ID)
		_, _ = fmt.Fprintf(io.Writer, "Access Token: %s\n", session.AccessToken)
		_, _ = fmt.Fprintf(io.Writer, "Expires In: %d seconds\n", session.ExpiresIn)
		return nil
	}

	return writeStructured(io.Writer, format, sessionView{
		ID:              session.ID,
		PNName:          session.PNName,
		Nickname:        session.Nickname,
		AccessToken:     session.AccessToken,
		ExpiresIn:       session.ExpiresIn,
		AuthenticatedAt: session.AuthenticatedAt,
		PublicKey:       session.PublicKey,
	})
}
