package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Decrypter is the subset of *secrets.Keeper used to reveal the carrier API key.
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeeperOpener opens a Decrypter for a gocloud.dev/secrets URI
// (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://).
type KeeperOpener interface {
	OpenKeeper(ctx context.Context, keyURI string) (Decrypter, error)
}

type gocloudKeeperOpener struct{}

// NewKeeperOpener returns a KeeperOpener backed by gocloud.dev/secrets.
func NewKeeperOpener() KeeperOpener {
	return &gocloudKeeperOpener{}
}

func (o *gocloudKeeperOpener) OpenKeeper(ctx context.Context, keyURI string) (Decrypter, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// ResolveAPIKey returns the carrier API key. A plain key wins; otherwise a base64
// ciphertext is decrypted with the keeper at keyURI. Both empty yields "".
func ResolveAPIKey(ctx context.Context, opener KeeperOpener, keyURI, ciphertext, plain string) (string, error) {
	if plain != "" {
		return plain, nil
	}
	if ciphertext == "" {
		return "", nil
	}
	if keyURI == "" {
		return "", fmt.Errorf("carrier api key ciphertext set without KMS_KEY_URI")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("failed to decode carrier api key ciphertext: %w", err)
	}

	keeper, err := opener.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer keeper.Close() //nolint:errcheck

	plaintext, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt carrier api key: %w", err)
	}
	return strings.TrimSpace(string(plaintext)), nil
}
