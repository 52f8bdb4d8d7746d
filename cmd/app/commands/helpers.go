// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"gopkg.in/yaml.v3"

	"github.com/bymjmazzei/par-noir/internal/app"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// Output formats accepted by the --format flag.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var errEmptyPasscode = errors.New("passcode is required (use --passcode or pipe it on stdin)")

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// readPasscode returns flagValue when set, otherwise the first line of r.
func readPasscode(flagValue string, r io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if r == nil {
		return "", errEmptyPasscode
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read passcode: %w", err)
	}
	passcode := strings.TrimRight(line, "\r\n")
	if passcode == "" {
		return "", errEmptyPasscode
	}
	return passcode, nil
}

// validateFormat rejects output formats other than text, json and yaml.
func validateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json, yaml)", format)
	}
}

// writeStructured encodes v as indented JSON or as YAML.
func writeStructured(w io.Writer, format string, v any) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}

// collapseAuthError hides which check rejected an authentication attempt.
func collapseAuthError(err error) error {
	if domain.IsAuthenticationFailure(err) {
		return domain.ErrAuthenticationFailed
	}
	return err
}

// identityView is the CLI rendering of a registry version. The encrypted
// identity file is never printed.
type identityView struct {
	PublicKey    string    `json:"publicKey"    yaml:"publicKey"`
	Nickname     string    `json:"nickname"     yaml:"nickname"`
	Version      int       `json:"version"      yaml:"version"`
	IsActive     bool      `json:"isActive"     yaml:"isActive"`
	CreatedAt    time.Time `json:"createdAt"    yaml:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed" yaml:"lastAccessed"`
}

func toIdentityView(v registryDomain.VersionedIdentity) identityView {
	return identityView{
		PublicKey:    v.PublicKey,
		Nickname:     v.Nickname,
		Version:      v.Version,
		IsActive:     v.IsActive,
		CreatedAt:    v.CreatedAt,
		LastAccessed: v.LastAccessed,
	}
}

func toIdentityViews(versions []registryDomain.VersionedIdentity) []identityView {
	views := make([]identityView, 0, len(versions))
	for _, v := range versions {
		views = append(views, toIdentityView(v))
	}
	return views
}

// writeIdentitiesText prints one line per version.
func writeIdentitiesText(w io.Writer, versions []registryDomain.VersionedIdentity) {
	if len(versions) == 0 {
		_, _ = fmt.Fprintln(w, "No identities found")
		return
	}
	for _, v := range versions {
		state := "inactive"
		if v.IsActive {
			state = "active"
		}
		_, _ = fmt.Fprintf(w, "%s\tv%d\t%s\t%s\tlast accessed %s\n",
			v.PublicKey, v.Version, state, v.Nickname, v.LastAccessed.Format(time.RFC3339))
	}
}
