package repository

import (
	"context"
	"errors"
	"fmt"

	"tokenlottery/application"
	"tokenlottery/database"
	"tokenlottery/domain/interfaces"
	"tokenlottery/events"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	lotteryRepo      *LotteryRepository
	transitionRepo   *TransitionRepository
	accountRepo      *AccountRepository
	ticketRepo       *TicketRepository
	randomnessRepo   *RandomnessRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.lotteryRepo = newLotteryRepositoryWithTx(tx)
	u.transitionRepo = newTransitionRepositoryWithTx(tx)
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.ticketRepo = newTicketRepositoryWithTx(tx)
	u.randomnessRepo = newRandomnessRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Events only leave the process once their transition is durable
	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		log.WithError(err).Error("Failed to flush events after commit")
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

// LotteryRepository returns the lottery repository for this unit of work
func (u *unitOfWork) LotteryRepository() interfaces.LotteryRepository {
	if u.lotteryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.lotteryRepo
}

// TransitionLogRepository returns the transition log for this unit of work
func (u *unitOfWork) TransitionLogRepository() interfaces.TransitionLogRepository {
	if u.transitionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transitionRepo
}

// Ledger returns the account ledger for this unit of work
func (u *unitOfWork) Ledger() interfaces.Ledger {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// TicketRegistry returns the ticket registry for this unit of work
func (u *unitOfWork) TicketRegistry() interfaces.TicketRegistry {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

// RandomnessRecordRepository returns the randomness record repository for this unit of work
func (u *unitOfWork) RandomnessRecordRepository() interfaces.RandomnessRecordRepository {
	if u.randomnessRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.randomnessRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalBus
}
