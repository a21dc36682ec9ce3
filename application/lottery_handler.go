package application

import (
	"context"
	"fmt"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"
	"tokenlottery/domain/services"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// OracleFactory builds a randomness oracle over the records visible to a unit of work
type OracleFactory func(records interfaces.RandomnessRecordRepository) interfaces.RandomnessOracle

// LotteryHandler runs every lottery, ledger and beacon operation in its own unit of work
type LotteryHandler struct {
	uowFactory UnitOfWorkFactory
	clock      interfaces.SlotClock
	verifier   interfaces.SignatureVerifier
	beaconKey  []byte
	newOracle  OracleFactory
}

// NewLotteryHandler creates a new lottery handler
func NewLotteryHandler(
	uowFactory UnitOfWorkFactory,
	clock interfaces.SlotClock,
	verifier interfaces.SignatureVerifier,
	beaconKey []byte,
	newOracle OracleFactory,
) *LotteryHandler {
	return &LotteryHandler{
		uowFactory: uowFactory,
		clock:      clock,
		verifier:   verifier,
		beaconKey:  beaconKey,
		newOracle:  newOracle,
	}
}

// withUnitOfWork runs fn in a transaction. The transaction commits only if fn succeeds;
// pending events are flushed after commit and dropped otherwise.
func (h *LotteryHandler) withUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Error("Failed to roll back transaction")
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (h *LotteryHandler) lotteryService(uow UnitOfWork) interfaces.LotteryService {
	return services.NewLotteryService(
		uow.LotteryRepository(),
		uow.TransitionLogRepository(),
		uow.Ledger(),
		uow.TicketRegistry(),
		h.newOracle(uow.RandomnessRecordRepository()),
		h.clock,
		uow.EventBus(),
	)
}

// InitializeConfig creates the lottery record for namespace
func (h *LotteryHandler) InitializeConfig(ctx context.Context, namespace string, authority common.Address, startSlot, endSlot, ticketPrice int64) (*entities.Lottery, error) {
	var lottery *entities.Lottery
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		lottery, err = h.lotteryService(uow).InitializeConfig(ctx, namespace, authority, startSlot, endSlot, ticketPrice)
		return err
	})
	return lottery, err
}

// InitializeLottery creates the ticket collection for namespace
func (h *LotteryHandler) InitializeLottery(ctx context.Context, namespace string, caller common.Address) (*entities.TicketCollection, error) {
	var collection *entities.TicketCollection
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		collection, err = h.lotteryService(uow).InitializeLottery(ctx, namespace, caller)
		return err
	})
	return collection, err
}

// BuyTicket sells the next ticket to payer
func (h *LotteryHandler) BuyTicket(ctx context.Context, namespace string, payer common.Address) (*interfaces.TicketPurchaseResult, error) {
	var result *interfaces.TicketPurchaseResult
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = h.lotteryService(uow).BuyTicket(ctx, namespace, payer)
		return err
	})
	return result, err
}

// CommitRandomness locks in the record that will decide the winner
func (h *LotteryHandler) CommitRandomness(ctx context.Context, namespace string, caller, record common.Address) (*entities.Lottery, error) {
	var lottery *entities.Lottery
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		lottery, err = h.lotteryService(uow).CommitRandomness(ctx, namespace, caller, record)
		return err
	})
	return lottery, err
}

// ChooseWinner reveals the committed record and selects the winner
func (h *LotteryHandler) ChooseWinner(ctx context.Context, namespace string, caller, record common.Address) (*interfaces.WinnerResult, error) {
	var result *interfaces.WinnerResult
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = h.lotteryService(uow).ChooseWinner(ctx, namespace, caller, record)
		return err
	})
	return result, err
}

// ClaimPrize pays the pot to the holder of the winning ticket
func (h *LotteryHandler) ClaimPrize(ctx context.Context, namespace string, claimant, credentialID common.Address) (*interfaces.ClaimResult, error) {
	var result *interfaces.ClaimResult
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		result, err = h.lotteryService(uow).ClaimPrize(ctx, namespace, claimant, credentialID)
		return err
	})
	return result, err
}

// TransferTicket hands a ticket to another holder
func (h *LotteryHandler) TransferTicket(ctx context.Context, namespace string, from, credentialID, to common.Address) (*entities.TicketCredential, error) {
	var credential *entities.TicketCredential
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		credential, err = h.lotteryService(uow).TransferTicket(ctx, namespace, from, credentialID, to)
		return err
	})
	return credential, err
}

// GetLottery returns a snapshot of the lottery at the current slot
func (h *LotteryHandler) GetLottery(ctx context.Context, namespace string) (*interfaces.LotteryView, error) {
	var view *interfaces.LotteryView
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		view, err = h.lotteryService(uow).GetLottery(ctx, namespace)
		return err
	})
	return view, err
}

// ListTickets returns the tickets owner holds in namespace
func (h *LotteryHandler) ListTickets(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error) {
	var credentials []*entities.TicketCredential
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		credentials, err = h.lotteryService(uow).ListTickets(ctx, namespace, owner)
		return err
	})
	return credentials, err
}

// Deposit funds an account
func (h *LotteryHandler) Deposit(ctx context.Context, address common.Address, amount int64) (*entities.Account, error) {
	var account *entities.Account
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		account, err = services.NewAccountService(uow.Ledger()).Deposit(ctx, address, amount)
		return err
	})
	return account, err
}

// GetAccount returns an account balance
func (h *LotteryHandler) GetAccount(ctx context.Context, address common.Address) (*entities.Account, error) {
	var account *entities.Account
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		account, err = services.NewAccountService(uow.Ledger()).GetAccount(ctx, address)
		return err
	})
	return account, err
}

// PublishRecord stores a new beacon record
func (h *LotteryHandler) PublishRecord(ctx context.Context, record *entities.RandomnessRecord) error {
	return h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		return services.NewRandomnessService(uow.RandomnessRecordRepository(), h.verifier, h.clock, h.beaconKey).PublishRecord(ctx, record)
	})
}

// RevealRecord attaches the beacon signature to a record
func (h *LotteryHandler) RevealRecord(ctx context.Context, address common.Address, signature []byte) (*entities.RandomnessRecord, error) {
	var record *entities.RandomnessRecord
	err := h.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		var err error
		record, err = services.NewRandomnessService(uow.RandomnessRecordRepository(), h.verifier, h.clock, h.beaconKey).RevealRecord(ctx, address, signature)
		return err
	})
	return record, err
}
