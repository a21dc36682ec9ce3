package entities

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// TicketNamePrefix is prepended to the sequence number to name a ticket credential
	TicketNamePrefix = "Token Lottery Ticket #"
	// TicketSymbol is the symbol shared by the collection and every ticket
	TicketSymbol = "TLT"
	// TicketURI points at the metadata document shared by every ticket
	TicketURI = "https://raw.githubusercontent.com/solana-developers/developer-bootcamp-2024/refs/heads/main/project-9-token-lottery/metadata.json"
)

// TicketCollection groups every ticket credential issued by one lottery
type TicketCollection struct {
	ID            int64          `db:"id"`
	Namespace     string         `db:"namespace"`
	CollectionKey common.Address `db:"collection_key"`
	Name          string         `db:"name"`
	Symbol        string         `db:"symbol"`
	URI           string         `db:"uri"`
	Verified      bool           `db:"verified"`
	CreatedAt     time.Time      `db:"created_at"`
}

// TicketCredential is the collectible credential issued per ticket purchase
type TicketCredential struct {
	ID            common.Address `db:"id"`
	Namespace     string         `db:"namespace"`
	Sequence      int64          `db:"sequence"`
	Owner         common.Address `db:"owner"`
	Name          string         `db:"name"`
	Symbol        string         `db:"symbol"`
	URI           string         `db:"uri"`
	CollectionKey common.Address `db:"collection_key"`
	Verified      bool           `db:"verified"`
	Amount        int64          `db:"amount"` // units held by Owner
	CreatedAt     time.Time      `db:"created_at"`
}

// TicketName returns the credential name for a sequence number
func TicketName(sequence int64) string {
	return TicketNamePrefix + strconv.FormatInt(sequence, 10)
}

// NormalizedName strips NUL padding from the stored credential name
func (t *TicketCredential) NormalizedName() string {
	return strings.ReplaceAll(t.Name, "\x00", "")
}

// IsFor returns true if the credential is named for the given sequence number
func (t *TicketCredential) IsFor(sequence int64) bool {
	return t.Sequence == sequence && t.NormalizedName() == TicketName(sequence)
}

// BelongsTo returns true if the credential is a member of the collection
func (t *TicketCredential) BelongsTo(collectionKey common.Address) bool {
	return t.CollectionKey == collectionKey
}

// CollectionKey derives the collection address for a namespace
func CollectionKey(namespace string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("collection_mint"), []byte(namespace)))
}

// TicketCredentialID derives the credential address for (namespace, sequence)
func TicketCredentialID(namespace string, sequence int64) common.Address {
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], uint64(sequence))
	return common.BytesToAddress(crypto.Keccak256([]byte(namespace), seq[:]))
}

// NewTicketCollection builds the verified collection for a namespace
func NewTicketCollection(namespace string) *TicketCollection {
	return &TicketCollection{
		Namespace:     namespace,
		CollectionKey: CollectionKey(namespace),
		Name:          TicketNamePrefix,
		Symbol:        TicketSymbol,
		URI:           TicketURI,
		Verified:      true,
	}
}

// NewTicketCredential builds the single-unit credential for a sequence number
func NewTicketCredential(namespace string, owner, collectionKey common.Address, sequence int64) *TicketCredential {
	return &TicketCredential{
		ID:            TicketCredentialID(namespace, sequence),
		Namespace:     namespace,
		Sequence:      sequence,
		Owner:         owner,
		Name:          TicketName(sequence),
		Symbol:        TicketSymbol,
		URI:           TicketURI,
		CollectionKey: collectionKey,
		Verified:      true,
		Amount:        1,
	}
}
