package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"
	"tokenlottery/events"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const recentTransitionLimit = 20

// lotteryService implements the lottery state machine
type lotteryService struct {
	lotteryRepo    interfaces.LotteryRepository
	transitionRepo interfaces.TransitionLogRepository
	registry       interfaces.TicketRegistry
	oracle         interfaces.RandomnessOracle
	clock          interfaces.SlotClock
	custody        *fundCustody
	eventPublisher interfaces.EventPublisher
}

// NewLotteryService creates a new lottery service
func NewLotteryService(
	lotteryRepo interfaces.LotteryRepository,
	transitionRepo interfaces.TransitionLogRepository,
	ledger interfaces.Ledger,
	registry interfaces.TicketRegistry,
	oracle interfaces.RandomnessOracle,
	clock interfaces.SlotClock,
	eventPublisher interfaces.EventPublisher,
) interfaces.LotteryService {
	return &lotteryService{
		lotteryRepo:    lotteryRepo,
		transitionRepo: transitionRepo,
		registry:       registry,
		oracle:         oracle,
		clock:          clock,
		custody:        newFundCustody(ledger),
		eventPublisher: eventPublisher,
	}
}

// InitializeConfig creates the lottery record owned by authority
func (s *lotteryService) InitializeConfig(ctx context.Context, namespace string, authority common.Address, startSlot, endSlot, ticketPrice int64) (*entities.Lottery, error) {
	lottery, err := entities.NewLottery(namespace, authority, startSlot, endSlot, ticketPrice)
	if err != nil {
		return nil, err
	}

	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.lotteryRepo.GetByNamespace(ctx, lottery.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if existing != nil {
		return nil, ErrWithNamespace(entities.ErrLotteryExists, lottery.Namespace)
	}

	if err := s.lotteryRepo.Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionInitializeConfig, authority, slot, 0, map[string]any{
		"start_slot":   startSlot,
		"end_slot":     endSlot,
		"ticket_price": ticketPrice,
	}); err != nil {
		return nil, err
	}

	s.publish(events.LotteryConfiguredEvent{
		Namespace:   lottery.Namespace,
		Authority:   authority.Hex(),
		StartSlot:   startSlot,
		EndSlot:     endSlot,
		TicketPrice: ticketPrice,
	})

	return lottery, nil
}

// InitializeLottery creates the ticket collection through the registry
func (s *lotteryService) InitializeLottery(ctx context.Context, namespace string, caller common.Address) (*entities.TicketCollection, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !lottery.IsAuthority(caller) {
		return nil, entities.ErrNotAuthorized
	}
	if lottery.CollectionInitialized {
		return nil, ErrWithNamespace(entities.ErrCollectionExists, lottery.Namespace)
	}

	collection, err := s.registry.CreateCollection(ctx, lottery.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket collection: %w", err)
	}

	lottery.CollectionInitialized = true
	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionInitializeLottery, caller, slot, 0, map[string]any{
		"collection_key": collection.CollectionKey.Hex(),
	}); err != nil {
		return nil, err
	}

	s.publish(events.CollectionCreatedEvent{
		Namespace:     lottery.Namespace,
		CollectionKey: collection.CollectionKey.Hex(),
	})

	return collection, nil
}

// BuyTicket charges the payer and issues the next ticket
func (s *lotteryService) BuyTicket(ctx context.Context, namespace string, payer common.Address) (*interfaces.TicketPurchaseResult, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !lottery.IsOpen(slot) {
		return nil, entities.ErrLotteryNotOpen
	}
	if !lottery.CollectionInitialized {
		return nil, entities.ErrCollectionNotInitialized
	}

	collection, err := s.registry.GetCollection(ctx, lottery.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket collection: %w", err)
	}
	if collection == nil {
		return nil, entities.ErrCollectionNotInitialized
	}

	if err := s.custody.Escrow(ctx, lottery, payer); err != nil {
		return nil, err
	}

	sequence := lottery.NextTicketSequence()
	credential, err := s.registry.MintAndRegister(ctx, payer, collection.CollectionKey, lottery.Namespace, sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to mint ticket %d: %w", sequence, err)
	}

	lottery.TotalTickets++
	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionBuyTicket, payer, slot, lottery.TicketPrice, map[string]any{
		"sequence":      sequence,
		"credential_id": credential.ID.Hex(),
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"namespace": lottery.Namespace,
		"buyer":     payer.Hex(),
		"sequence":  sequence,
		"pot":       lottery.PotAmount,
	}).Debug("Ticket purchased")

	s.publish(events.TicketPurchasedEvent{
		Namespace:    lottery.Namespace,
		Buyer:        payer.Hex(),
		Sequence:     sequence,
		CredentialID: credential.ID.Hex(),
		Price:        lottery.TicketPrice,
		PotAmount:    lottery.PotAmount,
	})

	return &interfaces.TicketPurchaseResult{
		Lottery:    lottery,
		Credential: credential,
	}, nil
}

// CommitRandomness locks in the oracle record that will decide the winner
func (s *lotteryService) CommitRandomness(ctx context.Context, namespace string, caller, record common.Address) (*entities.Lottery, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !lottery.IsAuthority(caller) {
		return nil, entities.ErrNotAuthorized
	}
	if lottery.WinnerChosen {
		return nil, entities.ErrWinnerChosen
	}
	if lottery.HasCommitment() {
		return nil, entities.ErrRandomnessAlreadyCommitted
	}

	randomness, err := s.oracle.Parse(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse randomness record %s: %w", record.Hex(), err)
	}

	// A record seeded before the previous slot may already be revealed
	if !randomness.IsFresh(slot) || randomness.HasReveal() {
		return nil, entities.ErrRandomnessAlreadyRevealed
	}

	lottery.CommitRandomness(record)
	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionCommitRandomness, caller, slot, 0, map[string]any{
		"record":    record.Hex(),
		"seed_slot": randomness.SeedSlot,
	}); err != nil {
		return nil, err
	}

	s.publish(events.RandomnessCommittedEvent{
		Namespace: lottery.Namespace,
		Record:    record.Hex(),
		Slot:      slot,
	})

	return lottery, nil
}

// ChooseWinner reveals the committed randomness and selects the winning sequence
func (s *lotteryService) ChooseWinner(ctx context.Context, namespace string, caller, record common.Address) (*interfaces.WinnerResult, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !lottery.IsAuthority(caller) {
		return nil, entities.ErrNotAuthorized
	}
	if !lottery.IsCommittedTo(record) {
		return nil, entities.ErrIncorrectRandomnessAccount
	}
	if !lottery.IsCompleted(slot) {
		return nil, entities.ErrLotteryNotCompleted
	}
	if lottery.WinnerChosen {
		return nil, entities.ErrWinnerChosen
	}
	if lottery.TotalTickets == 0 {
		return nil, entities.ErrNoTickets
	}

	randomness, err := s.oracle.Parse(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse randomness record %s: %w", record.Hex(), err)
	}

	revealed, err := s.oracle.Reveal(ctx, randomness, slot)
	if errors.Is(err, entities.ErrRandomnessPending) {
		return nil, entities.ErrRandomnessNotResolved
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reveal randomness: %w", err)
	}

	winner := lottery.SelectWinner(revealed)
	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionChooseWinner, caller, slot, 0, map[string]any{
		"revealed_value": revealed,
		"total_tickets":  lottery.TotalTickets,
		"winner":         winner,
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"namespace":     lottery.Namespace,
		"revealedValue": revealed,
		"totalTickets":  lottery.TotalTickets,
		"winner":        winner,
	}).Info("Lottery winner chosen")

	s.publish(events.WinnerChosenEvent{
		Namespace:     lottery.Namespace,
		Winner:        winner,
		TotalTickets:  lottery.TotalTickets,
		RevealedValue: revealed,
		PotAmount:     lottery.PotAmount,
	})

	return &interfaces.WinnerResult{
		Lottery:       lottery,
		RevealedValue: revealed,
	}, nil
}

// ClaimPrize pays the pot to the holder of the winning ticket
func (s *lotteryService) ClaimPrize(ctx context.Context, namespace string, claimant, credentialID common.Address) (*interfaces.ClaimResult, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !lottery.WinnerChosen {
		return nil, entities.ErrWinnerNotChosen
	}

	credential, err := s.registry.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket credential: %w", err)
	}
	if credential == nil {
		return nil, entities.ErrIncorrectTicket
	}

	collection, err := s.registry.GetCollection(ctx, lottery.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket collection: %w", err)
	}
	if collection == nil {
		return nil, entities.ErrCollectionNotInitialized
	}

	if !credential.Verified {
		return nil, entities.ErrNotVerified
	}
	if !credential.BelongsTo(collection.CollectionKey) {
		return nil, entities.ErrIncorrectTicket
	}
	member, err := s.registry.VerifyMembership(ctx, credential.ID, collection.CollectionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ticket membership: %w", err)
	}
	if !member {
		return nil, entities.ErrNotVerified
	}
	if !credential.IsFor(lottery.Winner) {
		return nil, entities.ErrIncorrectTicket
	}

	held, err := s.registry.HoldingAmount(ctx, credential.ID, claimant)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket holding: %w", err)
	}
	if held <= 0 {
		return nil, entities.ErrNoTicket
	}

	amount, err := s.custody.Disburse(ctx, lottery, claimant)
	if err != nil {
		return nil, err
	}

	if amount > 0 {
		now := time.Now()
		lottery.PrizeClaimedAt = &now
	} else {
		log.WithFields(log.Fields{
			"namespace": lottery.Namespace,
			"claimant":  claimant.Hex(),
		}).Warn("Prize already claimed, nothing transferred")
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.recordTransition(ctx, lottery, entities.TransitionClaimPrize, claimant, slot, amount, map[string]any{
		"credential_id": credential.ID.Hex(),
		"sequence":      credential.Sequence,
	}); err != nil {
		return nil, err
	}

	s.publish(events.PrizeClaimedEvent{
		Namespace: lottery.Namespace,
		Claimant:  claimant.Hex(),
		Sequence:  credential.Sequence,
		Amount:    amount,
	})

	return &interfaces.ClaimResult{
		Lottery:    lottery,
		Credential: credential,
		Amount:     amount,
	}, nil
}

// GetLottery returns the lottery with its derived phase
func (s *lotteryService) GetLottery(ctx context.Context, namespace string) (*interfaces.LotteryView, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lotteryRepo.GetByNamespace(ctx, namespaceOrDefault(namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}

	recent, err := s.transitionRepo.ListByLottery(ctx, lottery.ID, recentTransitionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	return &interfaces.LotteryView{
		Lottery:     lottery,
		Phase:       lottery.Phase(slot),
		CurrentSlot: slot,
		Recent:      recent,
	}, nil
}

// ListTickets returns the tickets owner holds in a lottery
func (s *lotteryService) ListTickets(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error) {
	tickets, err := s.registry.ListByOwner(ctx, namespaceOrDefault(namespace), owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// TransferTicket hands a ticket to another holder
func (s *lotteryService) TransferTicket(ctx context.Context, namespace string, from, credentialID, to common.Address) (*entities.TicketCredential, error) {
	slot, err := s.currentSlot(ctx)
	if err != nil {
		return nil, err
	}

	lottery, err := s.lockLottery(ctx, namespace)
	if err != nil {
		return nil, err
	}

	credential, err := s.registry.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket credential: %w", err)
	}
	if credential == nil || credential.Namespace != lottery.Namespace {
		return nil, entities.ErrIncorrectTicket
	}

	if err := s.registry.Transfer(ctx, credential.ID, from, to); err != nil {
		return nil, fmt.Errorf("failed to transfer ticket: %w", err)
	}
	credential.Owner = to

	if err := s.recordTransition(ctx, lottery, entities.TransitionTransferTicket, from, slot, 0, map[string]any{
		"credential_id": credential.ID.Hex(),
		"sequence":      credential.Sequence,
		"to":            to.Hex(),
	}); err != nil {
		return nil, err
	}

	s.publish(events.TicketTransferredEvent{
		Namespace:    lottery.Namespace,
		CredentialID: credential.ID.Hex(),
		Sequence:     credential.Sequence,
		From:         from.Hex(),
		To:           to.Hex(),
	})

	return credential, nil
}

// lockLottery loads the lottery row for update
func (s *lotteryService) lockLottery(ctx context.Context, namespace string) (*entities.Lottery, error) {
	lottery, err := s.lotteryRepo.GetByNamespaceForUpdate(ctx, namespaceOrDefault(namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to lock lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}
	return lottery, nil
}

func (s *lotteryService) currentSlot(ctx context.Context) (int64, error) {
	slot, err := s.clock.CurrentSlot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read current slot: %w", err)
	}
	return slot, nil
}

func (s *lotteryService) recordTransition(ctx context.Context, lottery *entities.Lottery, kind entities.TransitionKind, actor common.Address, slot, amount int64, metadata map[string]any) error {
	transition := &entities.LotteryTransition{
		LotteryID: lottery.ID,
		Kind:      kind,
		Actor:     actor,
		Slot:      slot,
		Amount:    amount,
		Metadata:  metadata,
	}
	if err := s.transitionRepo.Record(ctx, transition); err != nil {
		return fmt.Errorf("failed to record %s transition: %w", kind, err)
	}
	return nil
}

func (s *lotteryService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish lottery event")
	}
}

func namespaceOrDefault(namespace string) string {
	if namespace == "" {
		return entities.DefaultNamespace
	}
	return namespace
}

// ErrWithNamespace annotates a lottery error with the namespace it concerns
func ErrWithNamespace(err error, namespace string) error {
	return fmt.Errorf("%w: %s", err, namespace)
}
