package domain

// Key derivation and cipher parameters. There is exactly one parameter set per
// KDFVersion; decryption never tries alternatives.
const (
	// KDFVersionCurrent tags ciphertext produced with PBKDF2-HMAC-SHA512 at
	// MinKDFIterations or more and AES-256-GCM.
	KDFVersionCurrent = 1

	// MinKDFIterations is the lowest PBKDF2 iteration count the vault accepts.
	MinKDFIterations = 1_000_000

	KeySize  = 32
	SaltSize = 16
	IVSize   = 12

	// MinRSABits is the smallest identity key pair the vault generates.
	MinRSABits = 2048

	// SessionExpiresIn is the lifetime of an AuthSession in seconds.
	SessionExpiresIn = 3600

	// DefaultRecoveryKeyCount is the number of recovery keys created with an identity.
	DefaultRecoveryKeyCount = 5

	// ExportVersion is the only export envelope version understood by import.
	ExportVersion = "1.0"

	// DIDPrefix prefixes every identifier generated by the vault.
	DIDPrefix = "did:key:"
)
