package api

import (
	"time"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type configRequest struct {
	StartSlot   int64 `json:"start_slot"`
	EndSlot     int64 `json:"end_slot"`
	TicketPrice int64 `json:"ticket_price"`
}

type recordRequest struct {
	Record string `json:"record"`
}

type claimRequest struct {
	Credential string `json:"credential"`
}

type transferRequest struct {
	To string `json:"to"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type publishRecordRequest struct {
	SeedSlot  int64         `json:"seed_slot"`
	Seed      hexutil.Bytes `json:"seed"`
	PublicKey hexutil.Bytes `json:"public_key"`
}

type revealRecordRequest struct {
	Signature hexutil.Bytes `json:"signature"`
}

type lotteryResponse struct {
	Namespace             string     `json:"namespace"`
	Authority             string     `json:"authority"`
	StartSlot             int64      `json:"start_slot"`
	EndSlot               int64      `json:"end_slot"`
	TicketPrice           int64      `json:"ticket_price"`
	PotAmount             int64      `json:"pot_amount"`
	TotalTickets          int64      `json:"total_tickets"`
	RandomnessRecord      *string    `json:"randomness_record,omitempty"`
	WinnerChosen          bool       `json:"winner_chosen"`
	Winner                *int64     `json:"winner,omitempty"`
	CollectionInitialized bool       `json:"collection_initialized"`
	PrizeClaimedAt        *time.Time `json:"prize_claimed_at,omitempty"`
}

type lotteryViewResponse struct {
	Lottery     lotteryResponse      `json:"lottery"`
	Phase       string               `json:"phase"`
	CurrentSlot int64                `json:"current_slot"`
	Recent      []transitionResponse `json:"recent"`
}

type transitionResponse struct {
	Kind      string    `json:"kind"`
	Actor     string    `json:"actor"`
	Slot      int64     `json:"slot"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type collectionResponse struct {
	Namespace     string `json:"namespace"`
	CollectionKey string `json:"collection_key"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	URI           string `json:"uri"`
	Verified      bool   `json:"verified"`
}

type ticketResponse struct {
	ID       string `json:"id"`
	Sequence int64  `json:"sequence"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	URI      string `json:"uri"`
	Verified bool   `json:"verified"`
}

type purchaseResponse struct {
	Ticket    ticketResponse `json:"ticket"`
	PotAmount int64          `json:"pot_amount"`
}

type winnerResponse struct {
	Winner        int64  `json:"winner"`
	RevealedValue uint64 `json:"revealed_value"`
	TotalTickets  int64  `json:"total_tickets"`
}

type claimResponse struct {
	Amount    int64 `json:"amount"`
	PotAmount int64 `json:"pot_amount"`
}

type accountResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type recordResponse struct {
	Address    string        `json:"address"`
	SeedSlot   int64         `json:"seed_slot"`
	Seed       hexutil.Bytes `json:"seed"`
	PublicKey  hexutil.Bytes `json:"public_key"`
	RevealSlot *int64        `json:"reveal_slot,omitempty"`
	Signature  hexutil.Bytes `json:"signature,omitempty"`
}

func toLotteryResponse(l *entities.Lottery) lotteryResponse {
	resp := lotteryResponse{
		Namespace:             l.Namespace,
		Authority:             l.Authority.Hex(),
		StartSlot:             l.StartSlot,
		EndSlot:               l.EndSlot,
		TicketPrice:           l.TicketPrice,
		PotAmount:             l.PotAmount,
		TotalTickets:          l.TotalTickets,
		WinnerChosen:          l.WinnerChosen,
		CollectionInitialized: l.CollectionInitialized,
		PrizeClaimedAt:        l.PrizeClaimedAt,
	}
	if l.RandomnessRecord != nil {
		record := l.RandomnessRecord.Hex()
		resp.RandomnessRecord = &record
	}
	if l.WinnerChosen {
		winner := l.Winner
		resp.Winner = &winner
	}
	return resp
}

func toLotteryViewResponse(v *interfaces.LotteryView) lotteryViewResponse {
	resp := lotteryViewResponse{
		Lottery:     toLotteryResponse(v.Lottery),
		Phase:       string(v.Phase),
		CurrentSlot: v.CurrentSlot,
		Recent:      make([]transitionResponse, 0, len(v.Recent)),
	}
	for _, t := range v.Recent {
		resp.Recent = append(resp.Recent, transitionResponse{
			Kind:      string(t.Kind),
			Actor:     t.Actor.Hex(),
			Slot:      t.Slot,
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
		})
	}
	return resp
}

func toCollectionResponse(c *entities.TicketCollection) collectionResponse {
	return collectionResponse{
		Namespace:     c.Namespace,
		CollectionKey: c.CollectionKey.Hex(),
		Name:          c.Name,
		Symbol:        c.Symbol,
		URI:           c.URI,
		Verified:      c.Verified,
	}
}

func toTicketResponse(c *entities.TicketCredential) ticketResponse {
	return ticketResponse{
		ID:       c.ID.Hex(),
		Sequence: c.Sequence,
		Owner:    c.Owner.Hex(),
		Name:     c.Name,
		Symbol:   c.Symbol,
		URI:      c.URI,
		Verified: c.Verified,
	}
}

func toAccountResponse(a *entities.Account) accountResponse {
	return accountResponse{
		Address: a.Address.Hex(),
		Balance: a.Balance,
	}
}

func toRecordResponse(r *entities.RandomnessRecord) recordResponse {
	return recordResponse{
		Address:    r.Address.Hex(),
		SeedSlot:   r.SeedSlot,
		Seed:       r.Seed,
		PublicKey:  r.PublicKey,
		RevealSlot: r.RevealSlot,
		Signature:  r.Signature,
	}
}
