package domain

// RecoveryPurpose labels what a recovery key is meant to be handed to.
type RecoveryPurpose string

const (
	PurposePersonal  RecoveryPurpose = "personal"
	PurposeLegal     RecoveryPurpose = "legal"
	PurposeInsurance RecoveryPurpose = "insurance"
	PurposeWill      RecoveryPurpose = "will"
	PurposeEmergency RecoveryPurpose = "emergency"
)

// RecoveryPurposes is the order in which purposes are assigned to new keys.
var RecoveryPurposes = []RecoveryPurpose{
	PurposePersonal,
	PurposeLegal,
	PurposeInsurance,
	PurposeWill,
	PurposeEmergency,
}

// RecoveryKey is an opaque recovery credential. Each key comes from its own
// random entropy; keys are not shares of a threshold scheme.
type RecoveryKey struct {
	Purpose RecoveryPurpose `json:"purpose"`
	Key     string          `json:"key"`
}
