package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Manifest records what one provisioning run left on the host. The
// status command compares it against the live filesystem to detect
// drift (a replaced or modified binary).
type Manifest struct {
	ProvisionedAt  time.Time `json:"provisioned_at"`
	ServiceUser    string    `json:"service_user"`
	BinaryPath     string    `json:"binary_path"`
	BinaryChecksum string    `json:"binary_checksum"` // xxhash64, hex
	PackageVersion string    `json:"package_version,omitempty"`
	Codename       string    `json:"codename,omitempty"`
}

// Checksum hashes the file at path with xxhash64 and returns a hex
// digest.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Save writes the manifest as indented JSON.
func Save(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a manifest written by Save.
func Load(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Verify re-hashes the recorded binary and reports whether it still
// matches the manifest. A missing binary is reported as drift, not an
// error.
func Verify(m Manifest) (bool, error) {
	sum, err := Checksum(m.BinaryPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sum == m.BinaryChecksum, nil
}
