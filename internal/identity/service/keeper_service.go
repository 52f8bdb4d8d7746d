package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperService opens the keeper used to seal export files.
type KeeperService interface {
	// OpenKeeper opens a keeper for keeperURL. Supports gcpkms://, awskms://,
	// azurekeyvault://, hashivault:// and base64key://.
	OpenKeeper(ctx context.Context, keeperURL string) (Keeper, error)
}

type keeperService struct{}

// NewKeeperService creates a new KeeperService.
func NewKeeperService() KeeperService {
	return &keeperService{}
}

func (k *keeperService) OpenKeeper(ctx context.Context, keeperURL string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open export keeper: %w", err)
	}
	return keeper, nil
}
