package oracle

import (
	"fmt"

	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/sign/bls"
)

// BLSVerifier checks beacon signatures on the bn256 pairing curve.
// Public keys are G2 points, signatures G1 points.
type BLSVerifier struct {
	suite *pairing.SuiteBn256
}

// NewBLSVerifier creates a verifier over the bn256 suite
func NewBLSVerifier() *BLSVerifier {
	return &BLSVerifier{suite: pairing.NewSuiteBn256()}
}

// Verify returns nil if signature is a valid BLS signature of message under publicKey
func (v *BLSVerifier) Verify(publicKey, message, signature []byte) error {
	point := v.suite.G2().Point()
	if err := point.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("failed to decode beacon public key: %w", err)
	}

	if err := bls.Verify(v.suite, point, message, signature); err != nil {
		return fmt.Errorf("failed to verify beacon signature: %w", err)
	}

	return nil
}
