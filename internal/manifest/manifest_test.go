package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".install-manifest.json")
	m := Manifest{
		ProvisionedAt:  time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		ServiceUser:    "nginx",
		BinaryPath:     "/opt/nginx/bin/nginx",
		BinaryChecksum: "00000000deadbeef",
		PackageVersion: "1.18.0-1~bionic",
		Codename:       "bionic",
	}
	if err := Save(path, m); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != m {
		t.Errorf("roundtrip mismatch: %+v vs %+v", got, m)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestVerify_Match(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "nginx")
	if err := os.WriteFile(bin, []byte("ELF binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	sum, err := Checksum(bin)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(Manifest{BinaryPath: bin, BinaryChecksum: sum})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("expected untouched binary to verify")
	}
}

func TestVerify_DetectsDrift(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "nginx")
	if err := os.WriteFile(bin, []byte("ELF binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	sum, _ := Checksum(bin)
	if err := os.WriteFile(bin, []byte("tampered"), 0o755); err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(Manifest{BinaryPath: bin, BinaryChecksum: sum})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("expected drift to be detected")
	}
}

func TestVerify_MissingBinaryIsDrift(t *testing.T) {
	ok, err := Verify(Manifest{BinaryPath: filepath.Join(t.TempDir(), "gone"), BinaryChecksum: "x"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("missing binary must read as drift")
	}
}
