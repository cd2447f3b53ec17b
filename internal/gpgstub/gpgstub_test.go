package gpgstub

import (
	"errors"
	"testing"
)

func TestNewEmptyKeyring(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if v == nil {
		t.Fatal("New() returned nil Verifier")
	}
}

func TestNewInvalidArmoredKey(t *testing.T) {
	if _, err := New("not an armored key"); err == nil {
		t.Error("New() with a malformed armored key should fail")
	}
}

func TestVerifyDetachedNotImplemented(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if err := v.VerifyDetached([]byte("data"), []byte("sig")); !errors.Is(err, ErrGPGNotImplemented) {
		t.Errorf("VerifyDetached() err = %v, want ErrGPGNotImplemented", err)
	}
}

func TestVerifyClearsignedNotImplemented(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if err := v.VerifyClearsigned([]byte("clearsigned")); !errors.Is(err, ErrGPGNotImplemented) {
		t.Errorf("VerifyClearsigned() err = %v, want ErrGPGNotImplemented", err)
	}
}
