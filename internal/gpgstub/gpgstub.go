// Package gpgstub is the GPG verification seam. Real signature
// verification is out of scope (Non-goal): downloaded packages are
// checksum-verified only, and signature checking is left to the
// target's native package manager once the mirror is installed from.
// This package exists so a caller that wants to fail loudly on a
// GPG-required repository has somewhere to call, wired to a real
// OpenPGP implementation rather than hand-rolled crypto, instead of
// silently skipping the check.
package gpgstub

import (
	"fmt"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

// ErrGPGNotImplemented is returned by every Verifier method.
var ErrGPGNotImplemented = fmt.Errorf("gpgstub: signature verification is not implemented; configure GPGCheck=false or verify with the target's native package manager")

// Verifier is the seam a resolver/download path can depend on instead
// of calling gopenpgp directly, so the stub can later become a real
// implementation without changing call sites.
type Verifier struct {
	keyring *crypto.KeyRing
}

// New constructs a Verifier. armoredKeys may be empty; it exists so a
// future real implementation has a natural place to load keys into a
// *crypto.KeyRing.
func New(armoredKeys ...string) (*Verifier, error) {
	kr, err := crypto.NewKeyRing(nil)
	if err != nil {
		return nil, fmt.Errorf("gpgstub: construct empty keyring: %w", err)
	}
	for _, armored := range armoredKeys {
		key, err := crypto.NewKeyFromArmored(armored)
		if err != nil {
			return nil, fmt.Errorf("gpgstub: parse armored key: %w", err)
		}
		if err := kr.AddKey(key); err != nil {
			return nil, fmt.Errorf("gpgstub: add key to keyring: %w", err)
		}
	}
	return &Verifier{keyring: kr}, nil
}

// VerifyDetached always returns ErrGPGNotImplemented.
func (v *Verifier) VerifyDetached(data, signature []byte) error {
	return ErrGPGNotImplemented
}

// VerifyClearsigned always returns ErrGPGNotImplemented.
func (v *Verifier) VerifyClearsigned(clearsigned []byte) error {
	return ErrGPGNotImplemented
}
