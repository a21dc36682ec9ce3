package application_test

import (
	"context"
	"testing"
	"time"

	"tokenlottery/application"
	"tokenlottery/application/apptest"
	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"
	"tokenlottery/domain/testhelpers"
	"tokenlottery/events"
	"tokenlottery/infrastructure/oracle"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	authority = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	buyers    = []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000b1"),
		common.HexToAddress("0x00000000000000000000000000000000000000b2"),
		common.HexToAddress("0x00000000000000000000000000000000000000b3"),
	}
)

const namespace = "token_lottery"

type handlerFixture struct {
	factory  *apptest.MemoryUnitOfWorkFactory
	clock    *testhelpers.FakeClock
	recorder *apptest.EventRecorder
	beacon   *oracle.Beacon
	handler  *application.LotteryHandler
}

// newHandlerFixture pins the handler to a fresh beacon
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	beacon := oracle.NewBeacon()
	beaconKey, err := beacon.PublicKey()
	require.NoError(t, err)

	bus := events.NewBus()
	recorder := &apptest.EventRecorder{}
	bus.SubscribeAll(recorder.Handle)

	factory := apptest.NewMemoryUnitOfWorkFactory(bus)
	clock := testhelpers.NewFakeClock(0)
	verifier := oracle.NewBLSVerifier()

	handler := application.NewLotteryHandler(factory, clock, verifier, beaconKey, func(records interfaces.RandomnessRecordRepository) interfaces.RandomnessOracle {
		return oracle.NewOracle(records, verifier, beaconKey)
	})

	return &handlerFixture{
		factory:  factory,
		clock:    clock,
		recorder: recorder,
		beacon:   beacon,
		handler:  handler,
	}
}

func TestLotteryHandler_FullRound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.handler

	for _, buyer := range buyers {
		_, err := h.Deposit(ctx, buyer, 100)
		require.NoError(t, err)
	}

	_, err := h.InitializeConfig(ctx, namespace, authority, 100, 200, 50)
	require.NoError(t, err)
	_, err = h.InitializeLottery(ctx, namespace, authority)
	require.NoError(t, err)

	f.clock.Set(150)
	credentials := make(map[int64]*entities.TicketCredential)
	owners := make(map[int64]common.Address)
	for _, buyer := range buyers {
		result, err := h.BuyTicket(ctx, namespace, buyer)
		require.NoError(t, err)
		credentials[result.Credential.Sequence] = result.Credential
		owners[result.Credential.Sequence] = buyer
	}

	// Beacon publishes a record seeded at slot 200
	beacon := f.beacon
	f.clock.Set(200)
	record, err := beacon.NewRecord(200, []byte("round-1"))
	require.NoError(t, err)
	require.NoError(t, h.PublishRecord(ctx, record))

	f.clock.Set(201)
	_, err = h.CommitRandomness(ctx, namespace, authority, record.Address)
	require.NoError(t, err)

	_, err = h.ChooseWinner(ctx, namespace, authority, record.Address)
	assert.ErrorIs(t, err, entities.ErrRandomnessNotResolved)

	f.clock.Set(202)
	signature, err := beacon.Sign(record)
	require.NoError(t, err)
	_, err = h.RevealRecord(ctx, record.Address, signature)
	require.NoError(t, err)

	result, err := h.ChooseWinner(ctx, namespace, authority, record.Address)
	require.NoError(t, err)
	assert.Equal(t, oracle.DeriveValue(signature), result.RevealedValue)
	winner := result.Lottery.Winner
	assert.Equal(t, int64(result.RevealedValue%3), winner)

	loser := (winner + 1) % 3
	_, err = h.ClaimPrize(ctx, namespace, owners[loser], credentials[loser].ID)
	assert.ErrorIs(t, err, entities.ErrIncorrectTicket)

	claim, err := h.ClaimPrize(ctx, namespace, owners[winner], credentials[winner].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), claim.Amount)

	repeat, err := h.ClaimPrize(ctx, namespace, owners[winner], credentials[winner].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repeat.Amount)

	account, err := h.GetAccount(ctx, owners[winner])
	require.NoError(t, err)
	assert.Equal(t, int64(200), account.Balance)

	view, err := h.GetLottery(ctx, namespace)
	require.NoError(t, err)
	assert.Equal(t, entities.LotteryPhaseClaimed, view.Phase)
	assert.Equal(t, int64(0), view.Lottery.PotAmount)

	require.Eventually(t, func() bool {
		return len(f.recorder.Types()) >= 1+1+3+1+1+2
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, f.recorder.Types(), events.EventTypeWinnerChosen)
}

func TestLotteryHandler_FailedTransitionRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.handler

	_, err := h.InitializeConfig(ctx, namespace, authority, 100, 200, 50)
	require.NoError(t, err)

	commitsBefore, rollbacksBefore := f.factory.Counts()

	f.clock.Set(50)
	_, err = h.BuyTicket(ctx, namespace, buyers[0])
	assert.ErrorIs(t, err, entities.ErrLotteryNotOpen)

	commits, rollbacks := f.factory.Counts()
	assert.Equal(t, commitsBefore, commits)
	assert.Equal(t, rollbacksBefore+1, rollbacks)

	// Only the configuration event ever leaves the unit of work
	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, f.recorder.Types(), events.EventTypeTicketPurchased)
}

func TestLotteryHandler_TransferAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.handler

	_, err := h.Deposit(ctx, buyers[0], 50)
	require.NoError(t, err)
	_, err = h.InitializeConfig(ctx, namespace, authority, 100, 200, 50)
	require.NoError(t, err)
	_, err = h.InitializeLottery(ctx, namespace, authority)
	require.NoError(t, err)

	f.clock.Set(100)
	purchase, err := h.BuyTicket(ctx, namespace, buyers[0])
	require.NoError(t, err)

	_, err = h.TransferTicket(ctx, namespace, buyers[0], purchase.Credential.ID, buyers[1])
	require.NoError(t, err)

	held, err := h.ListTickets(ctx, namespace, buyers[0])
	require.NoError(t, err)
	assert.Empty(t, held)

	held, err = h.ListTickets(ctx, namespace, buyers[1])
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, purchase.Credential.ID, held[0].ID)
}

func TestLotteryHandler_RevealRejectsForgedSignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.handler

	f.clock.Set(10)
	record, err := f.beacon.NewRecord(9, []byte("seed"))
	require.NoError(t, err)
	require.NoError(t, h.PublishRecord(ctx, record))

	forged, err := oracle.NewBeacon().Sign(record)
	require.NoError(t, err)

	f.clock.Set(11)
	_, err = h.RevealRecord(ctx, record.Address, forged)
	assert.ErrorIs(t, err, entities.ErrInvalidRandomnessSignature)
}

func TestLotteryHandler_RevealWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.handler

	f.clock.Set(10)
	record, err := f.beacon.NewRecord(10, []byte("seed"))
	require.NoError(t, err)
	require.NoError(t, h.PublishRecord(ctx, record))

	signature, err := f.beacon.Sign(record)
	require.NoError(t, err)

	for _, slot := range []int64{10, 11} {
		f.clock.Set(slot)
		_, err = h.RevealRecord(ctx, record.Address, signature)
		assert.ErrorIs(t, err, entities.ErrRevealTooEarly, "slot %d", slot)
	}

	f.clock.Set(12)
	revealed, err := h.RevealRecord(ctx, record.Address, signature)
	require.NoError(t, err)
	assert.True(t, revealed.IsRevealed(12))
}

func TestLotteryHandler_PublishRejectsForeignBeacon(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newHandlerFixture(t)
	f.clock.Set(10)

	record, err := oracle.NewBeacon().NewRecord(10, []byte("seed"))
	require.NoError(t, err)

	err = f.handler.PublishRecord(ctx, record)
	assert.ErrorIs(t, err, entities.ErrInvalidRandomnessRecord)
}

func TestLotteryHandler_DepositValidation(t *testing.T) {
	t.Parallel()

	_, err := newHandlerFixture(t).handler.Deposit(context.Background(), buyers[0], 0)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)
}
