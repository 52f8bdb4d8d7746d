package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets/localsecrets"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
)

func sampleEnvelope() *domain.ExportEnvelope {
	return domain.NewExportEnvelope([]domain.EncryptedIdentity{{
		PublicKey:     "pk-1",
		EncryptedBlob: "YmxvYg==",
		IV:            "aXZpdml2aXZpdml2",
		Salt:          "c2FsdHNhbHRzYWx0c2FsdA==",
	}}, time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC))
}

func TestOpenExportKeeper(t *testing.T) {
	ctx := context.Background()

	t.Run("plain export needs no keeper", func(t *testing.T) {
		keeperService := &mockKeeperService{}
		keeper, err := OpenExportKeeper(ctx, keeperService, "base64key://", false)
		require.NoError(t, err)
		assert.Nil(t, keeper)
		keeperService.AssertNotCalled(t, "OpenKeeper", mock.Anything, mock.Anything)
	})

	t.Run("sealed without url", func(t *testing.T) {
		_, err := OpenExportKeeper(ctx, &mockKeeperService{}, "", true)
		require.ErrorIs(t, err, errKeeperURLRequired)
	})

	t.Run("sealed", func(t *testing.T) {
		key, err := localsecrets.NewRandomKey()
		require.NoError(t, err)
		expected := localsecrets.NewKeeper(key)
		defer func() { _ = expected.Close() }()

		keeperService := &mockKeeperService{}
		keeperService.On("OpenKeeper", ctx, "hashivault://export").Return(expected, nil)

		keeper, err := OpenExportKeeper(ctx, keeperService, "hashivault://export", true)
		require.NoError(t, err)
		assert.Same(t, expected, keeper)
	})
}

func TestRunExportIdentities(t *testing.T) {
	ctx := context.Background()

	t.Run("plain", func(t *testing.T) {
		wallet := &mockWallet{}
		wallet.On("Export", ctx, []string{"pk-1"}).Return(sampleEnvelope(), nil)

		var out bytes.Buffer
		require.NoError(t, RunExportIdentities(ctx, wallet, nil, discardLogger(), &out, []string{"pk-1"}))

		var envelope domain.ExportEnvelope
		require.NoError(t, json.Unmarshal(out.Bytes(), &envelope))
		assert.Equal(t, domain.ExportVersion, envelope.Version)
		require.Len(t, envelope.Identities, 1)
		assert.Equal(t, "pk-1", envelope.Identities[0].PublicKey)
	})

	t.Run("export error", func(t *testing.T) {
		wallet := &mockWallet{}
		wallet.On("Export", ctx, []string(nil)).Return(nil, registryDomain.ErrIdentityNotFound)

		err := RunExportIdentities(ctx, wallet, nil, discardLogger(), &bytes.Buffer{}, nil)
		require.ErrorIs(t, err, registryDomain.ErrIdentityNotFound)
	})
}

func TestSealedExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	key, err := localsecrets.NewRandomKey()
	require.NoError(t, err)
	keeper := localsecrets.NewKeeper(key)
	defer func() { _ = keeper.Close() }()

	envelope := sampleEnvelope()
	wallet := &mockWallet{}
	wallet.On("Export", ctx, []string(nil)).Return(envelope, nil)

	var sealed bytes.Buffer
	require.NoError(t, RunExportIdentities(ctx, wallet, keeper, discardLogger(), &sealed, nil))
	assert.NotContains(t, sealed.String(), "pk-1")

	plain, err := json.MarshalIndent(envelope, "", "  ")
	require.NoError(t, err)
	imported := []registryDomain.VersionedIdentity{*sampleVersion(1, true)}
	wallet.On("Import", ctx, plain, "Correct-Horse-42").Return(imported, nil)

	var out bytes.Buffer
	err = RunImportIdentities(ctx, wallet, keeper, discardLogger(),
		IOTuple{Reader: bytes.NewBufferString("Correct-Horse-42\n"), Writer: &out},
		sealed.Bytes(), "", FormatText,
	)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Imported 1 identities")
	wallet.AssertExpectations(t)
}

func TestRunImportIdentities(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"version":"1.0"}`)

	t.Run("json output", func(t *testing.T) {
		wallet := &mockWallet{}
		wallet.On("Import", ctx, data, "pass").
			Return([]registryDomain.VersionedIdentity{*sampleVersion(1, true)}, nil)

		var out bytes.Buffer
		err := RunImportIdentities(ctx, wallet, nil, discardLogger(), IOTuple{Writer: &out}, data, "pass", FormatJSON)
		require.NoError(t, err)

		var views []identityView
		require.NoError(t, json.Unmarshal(out.Bytes(), &views))
		require.Len(t, views, 1)
		assert.Equal(t, "pk-1", views[0].PublicKey)
	})

	t.Run("wrong passcode is collapsed", func(t *testing.T) {
		wallet := &mockWallet{}
		wallet.On("Import", ctx, data, "wrong").Return(nil, domain.ErrDecryption)

		err := RunImportIdentities(ctx, wallet, nil, discardLogger(), IOTuple{Writer: &bytes.Buffer{}}, data, "wrong", FormatText)
		require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
		assert.NotErrorIs(t, err, domain.ErrDecryption)
	})

	t.Run("invalid export passes through", func(t *testing.T) {
		wallet := &mockWallet{}
		wallet.On("Import", ctx, data, "pass").Return(nil, domain.ErrInvalidExport)

		err := RunImportIdentities(ctx, wallet, nil, discardLogger(), IOTuple{Writer: &bytes.Buffer{}}, data, "pass", FormatText)
		require.ErrorIs(t, err, domain.ErrInvalidExport)
	})

	t.Run("sealed input is not base64", func(t *testing.T) {
		key, err := localsecrets.NewRandomKey()
		require.NoError(t, err)
		keeper := localsecrets.NewKeeper(key)
		defer func() { _ = keeper.Close() }()

		wallet := &mockWallet{}
		err = RunImportIdentities(ctx, wallet, keeper, discardLogger(), IOTuple{Writer: &bytes.Buffer{}},
			[]byte("not base64!"), "pass", FormatText)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not valid base64")
		wallet.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
	})
}
