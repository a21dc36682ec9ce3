package oracle

import (
	"fmt"

	"tokenlottery/domain/entities"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/util/random"
)

// Beacon is a single-key BLS randomness beacon. It publishes records bound
// to a seed slot and later reveals them by signing the record message.
type Beacon struct {
	suite   *pairing.SuiteBn256
	private kyber.Scalar
	public  kyber.Point
}

// NewBeacon generates a fresh beacon key pair
func NewBeacon() *Beacon {
	suite := pairing.NewSuiteBn256()
	private, public := bls.NewKeyPair(suite, random.New())
	return &Beacon{suite: suite, private: private, public: public}
}

// LoadBeacon restores a beacon from a marshalled private scalar
func LoadBeacon(privateKey []byte) (*Beacon, error) {
	suite := pairing.NewSuiteBn256()

	private := suite.G2().Scalar()
	if err := private.UnmarshalBinary(privateKey); err != nil {
		return nil, fmt.Errorf("failed to decode beacon private key: %w", err)
	}

	public := suite.G2().Point().Mul(private, nil)
	return &Beacon{suite: suite, private: private, public: public}, nil
}

// PrivateKey returns the marshalled private scalar
func (b *Beacon) PrivateKey() ([]byte, error) {
	return b.private.MarshalBinary()
}

// PublicKey returns the marshalled G2 public key
func (b *Beacon) PublicKey() ([]byte, error) {
	return b.public.MarshalBinary()
}

// NewRecord builds an unrevealed record for seed published at seedSlot
func (b *Beacon) NewRecord(seedSlot int64, seed []byte) (*entities.RandomnessRecord, error) {
	publicKey, err := b.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal beacon public key: %w", err)
	}

	return &entities.RandomnessRecord{
		Address:   entities.RandomnessRecordAddress(publicKey, seedSlot, seed),
		SeedSlot:  seedSlot,
		Seed:      seed,
		PublicKey: publicKey,
	}, nil
}

// Sign produces the reveal signature for record
func (b *Beacon) Sign(record *entities.RandomnessRecord) ([]byte, error) {
	signature, err := bls.Sign(b.suite, b.private, record.Message())
	if err != nil {
		return nil, fmt.Errorf("failed to sign randomness record %s: %w", record.Address.Hex(), err)
	}
	return signature, nil
}
