package services

import (
	"context"
	"errors"
	"testing"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"
	"tokenlottery/domain/testhelpers"
	"tokenlottery/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testAuthority = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testBuyerA    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	testBuyerB    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	testBuyerC    = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	testRecord    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	testOther     = common.HexToAddress("0x00000000000000000000000000000000000000c2")
)

const testNamespace = "token_lottery"

// lotteryFixture wires the service to in-memory collaborators
type lotteryFixture struct {
	lotteries   *testhelpers.FakeLotteryRepository
	transitions *testhelpers.FakeTransitionLog
	ledger      *testhelpers.FakeLedger
	registry    *testhelpers.FakeTicketRegistry
	oracle      *testhelpers.FakeOracle
	clock       *testhelpers.FakeClock
	publisher   *testhelpers.RecordingPublisher
	service     interfaces.LotteryService
}

func newLotteryFixture(slot int64) *lotteryFixture {
	f := &lotteryFixture{
		lotteries:   testhelpers.NewFakeLotteryRepository(),
		transitions: testhelpers.NewFakeTransitionLog(),
		ledger:      testhelpers.NewFakeLedger(),
		registry:    testhelpers.NewFakeTicketRegistry(),
		oracle:      testhelpers.NewFakeOracle(),
		clock:       testhelpers.NewFakeClock(slot),
		publisher:   &testhelpers.RecordingPublisher{},
	}
	f.service = NewLotteryService(f.lotteries, f.transitions, f.ledger, f.registry, f.oracle, f.clock, f.publisher)
	return f
}

// openLottery configures a 100..200 lottery priced at 50 with its collection
func (f *lotteryFixture) openLottery(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.service.InitializeConfig(ctx, testNamespace, testAuthority, 100, 200, 50)
	require.NoError(t, err)
	_, err = f.service.InitializeLottery(ctx, testNamespace, testAuthority)
	require.NoError(t, err)
}

func (f *lotteryFixture) lottery(t *testing.T) *entities.Lottery {
	t.Helper()
	lottery, err := f.lotteries.GetByNamespace(context.Background(), testNamespace)
	require.NoError(t, err)
	require.NotNil(t, lottery)
	return lottery
}

// sellThree sells tickets 0, 1 and 2 to buyers A, B and C at slot 150
func (f *lotteryFixture) sellThree(t *testing.T) []*entities.TicketCredential {
	t.Helper()
	f.clock.Set(150)
	var credentials []*entities.TicketCredential
	for _, buyer := range []common.Address{testBuyerA, testBuyerB, testBuyerC} {
		f.ledger.Fund(buyer, 100)
		result, err := f.service.BuyTicket(context.Background(), testNamespace, buyer)
		require.NoError(t, err)
		credentials = append(credentials, result.Credential)
	}
	return credentials
}

func TestLotteryService_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(50)
	f.openLottery(t)
	credentials := f.sellThree(t)

	lottery := f.lottery(t)
	assert.Equal(t, int64(150), lottery.PotAmount)
	assert.Equal(t, int64(3), lottery.TotalTickets)
	for i, buyer := range []common.Address{testBuyerA, testBuyerB, testBuyerC} {
		assert.Equal(t, int64(50), f.ledger.Balance(buyer))
		assert.Equal(t, int64(i), credentials[i].Sequence)
		assert.Equal(t, entities.TicketName(int64(i)), credentials[i].Name)
	}

	f.oracle.Publish(testRecord, 200)
	f.clock.Set(201)
	committed, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	assert.True(t, committed.IsCommittedTo(testRecord))

	f.oracle.Resolve(testRecord, 201, 5)
	result, err := f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.RevealedValue)
	assert.True(t, result.Lottery.WinnerChosen)
	assert.Equal(t, int64(2), result.Lottery.Winner)

	claim, err := f.service.ClaimPrize(ctx, testNamespace, testBuyerC, credentials[2].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), claim.Amount)
	assert.Equal(t, int64(200), f.ledger.Balance(testBuyerC))
	assert.Equal(t, int64(0), f.lottery(t).PotAmount)
	assert.True(t, f.lottery(t).IsClaimed())

	repeat, err := f.service.ClaimPrize(ctx, testNamespace, testBuyerC, credentials[2].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repeat.Amount)
	assert.Equal(t, int64(200), f.ledger.Balance(testBuyerC))

	_, err = f.service.ClaimPrize(ctx, testNamespace, testBuyerA, credentials[0].ID)
	assert.ErrorIs(t, err, entities.ErrIncorrectTicket)

	assert.Equal(t, []entities.TransitionKind{
		entities.TransitionInitializeConfig,
		entities.TransitionInitializeLottery,
		entities.TransitionBuyTicket,
		entities.TransitionBuyTicket,
		entities.TransitionBuyTicket,
		entities.TransitionCommitRandomness,
		entities.TransitionChooseWinner,
		entities.TransitionClaimPrize,
		entities.TransitionClaimPrize,
	}, f.transitions.Kinds())

	published := f.publisher.Events()
	require.NotEmpty(t, published)
	last := published[len(published)-1].(events.PrizeClaimedEvent)
	assert.Equal(t, int64(0), last.Amount)
}

func TestLotteryService_InitializeConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start, end  int64
		price       int64
		expectedErr error
	}{
		{name: "valid window", start: 100, end: 200, price: 50},
		{name: "inverted window", start: 200, end: 100, price: 50, expectedErr: entities.ErrInvalidSaleWindow},
		{name: "empty window", start: 100, end: 100, price: 50, expectedErr: entities.ErrInvalidSaleWindow},
		{name: "zero price", start: 100, end: 200, price: 0, expectedErr: entities.ErrInvalidTicketPrice},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newLotteryFixture(0)

			lottery, err := f.service.InitializeConfig(context.Background(), testNamespace, testAuthority, tt.start, tt.end, tt.price)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, f.transitions.Kinds())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testAuthority, lottery.Authority)
			assert.Equal(t, int64(0), lottery.PotAmount)
			assert.Equal(t, int64(0), lottery.TotalTickets)
			assert.False(t, lottery.WinnerChosen)
			assert.False(t, lottery.HasCommitment())
		})
	}
}

func TestLotteryService_InitializeConfig_Duplicate(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(0)
	_, err := f.service.InitializeConfig(context.Background(), testNamespace, testAuthority, 100, 200, 50)
	require.NoError(t, err)

	_, err = f.service.InitializeConfig(context.Background(), testNamespace, testOther, 300, 400, 10)
	assert.ErrorIs(t, err, entities.ErrLotteryExists)
	assert.Equal(t, testAuthority, f.lottery(t).Authority)
}

func TestLotteryService_InitializeLottery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(0)
	_, err := f.service.InitializeConfig(ctx, testNamespace, testAuthority, 100, 200, 50)
	require.NoError(t, err)

	_, err = f.service.InitializeLottery(ctx, testNamespace, testOther)
	assert.ErrorIs(t, err, entities.ErrNotAuthorized)

	collection, err := f.service.InitializeLottery(ctx, testNamespace, testAuthority)
	require.NoError(t, err)
	assert.True(t, collection.Verified)
	assert.Equal(t, entities.CollectionKey(testNamespace), collection.CollectionKey)
	assert.True(t, f.lottery(t).CollectionInitialized)

	_, err = f.service.InitializeLottery(ctx, testNamespace, testAuthority)
	assert.ErrorIs(t, err, entities.ErrCollectionExists)

	_, err = f.service.InitializeLottery(ctx, "missing", testAuthority)
	assert.ErrorIs(t, err, entities.ErrLotteryNotFound)
}

func TestLotteryService_BuyTicket_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		slot        int64
		expectedErr error
	}{
		{name: "before start", slot: 99, expectedErr: entities.ErrLotteryNotOpen},
		{name: "at start", slot: 100},
		{name: "at end", slot: 200},
		{name: "after end", slot: 201, expectedErr: entities.ErrLotteryNotOpen},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newLotteryFixture(0)
			f.openLottery(t)
			f.ledger.Fund(testBuyerA, 50)
			f.clock.Set(tt.slot)

			_, err := f.service.BuyTicket(context.Background(), testNamespace, testBuyerA)
			lottery := f.lottery(t)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, int64(0), lottery.TotalTickets)
				assert.Equal(t, int64(0), lottery.PotAmount)
				assert.Equal(t, int64(50), f.ledger.Balance(testBuyerA))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(1), lottery.TotalTickets)
			assert.Equal(t, int64(50), lottery.PotAmount)
			assert.Equal(t, int64(0), f.ledger.Balance(testBuyerA))
		})
	}
}

func TestLotteryService_BuyTicket_InsufficientFunds(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(0)
	f.openLottery(t)
	f.ledger.Fund(testBuyerA, 49)
	f.clock.Set(150)

	_, err := f.service.BuyTicket(context.Background(), testNamespace, testBuyerA)
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	assert.Equal(t, int64(0), f.lottery(t).TotalTickets)
	assert.Equal(t, int64(49), f.ledger.Balance(testBuyerA))
}

func TestLotteryService_BuyTicket_CollectionNotInitialized(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(150)
	_, err := f.service.InitializeConfig(context.Background(), testNamespace, testAuthority, 100, 200, 50)
	require.NoError(t, err)
	f.ledger.Fund(testBuyerA, 50)

	_, err = f.service.BuyTicket(context.Background(), testNamespace, testBuyerA)
	assert.ErrorIs(t, err, entities.ErrCollectionNotInitialized)
}

func TestLotteryService_CommitRandomness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		caller      common.Address
		seedSlot    int64
		setup       func(t *testing.T, f *lotteryFixture)
		expectedErr error
	}{
		{name: "fresh record", caller: testAuthority, seedSlot: 200},
		{name: "not authority", caller: testBuyerA, seedSlot: 200, expectedErr: entities.ErrNotAuthorized},
		{name: "stale record", caller: testAuthority, seedSlot: 199, expectedErr: entities.ErrRandomnessAlreadyRevealed},
		{name: "future record", caller: testAuthority, seedSlot: 201, expectedErr: entities.ErrRandomnessAlreadyRevealed},
		{
			name:     "already committed",
			caller:   testAuthority,
			seedSlot: 200,
			setup: func(t *testing.T, f *lotteryFixture) {
				f.oracle.Publish(testOther, 200)
				_, err := f.service.CommitRandomness(context.Background(), testNamespace, testAuthority, testOther)
				require.NoError(t, err)
			},
			expectedErr: entities.ErrRandomnessAlreadyCommitted,
		},
		{
			name:     "fresh record already revealed",
			caller:   testAuthority,
			seedSlot: 200,
			setup: func(t *testing.T, f *lotteryFixture) {
				f.oracle.Resolve(testRecord, 200, 7)
			},
			expectedErr: entities.ErrRandomnessAlreadyRevealed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newLotteryFixture(0)
			f.openLottery(t)
			f.clock.Set(201)
			f.oracle.Publish(testRecord, tt.seedSlot)
			if tt.setup != nil {
				tt.setup(t, f)
			}

			_, err := f.service.CommitRandomness(context.Background(), testNamespace, tt.caller, testRecord)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.False(t, f.lottery(t).IsCommittedTo(testRecord))
				return
			}

			require.NoError(t, err)
			assert.True(t, f.lottery(t).IsCommittedTo(testRecord))
		})
	}
}

func TestLotteryService_CommitRandomness_UnknownRecord(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(0)
	f.openLottery(t)
	f.clock.Set(201)

	_, err := f.service.CommitRandomness(context.Background(), testNamespace, testAuthority, testRecord)
	assert.ErrorIs(t, err, entities.ErrRandomnessRecordNotFound)
}

func TestLotteryService_ChooseWinner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		caller      common.Address
		record      common.Address
		slot        int64
		resolve     bool
		expectedErr error
	}{
		{name: "resolved", caller: testAuthority, record: testRecord, slot: 201, resolve: true},
		{name: "not authority", caller: testBuyerA, record: testRecord, slot: 201, resolve: true, expectedErr: entities.ErrNotAuthorized},
		{name: "wrong record", caller: testAuthority, record: testOther, slot: 201, resolve: true, expectedErr: entities.ErrIncorrectRandomnessAccount},
		{name: "before end", caller: testAuthority, record: testRecord, slot: 199, resolve: true, expectedErr: entities.ErrLotteryNotCompleted},
		{name: "pending", caller: testAuthority, record: testRecord, slot: 201, expectedErr: entities.ErrRandomnessNotResolved},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newLotteryFixture(0)
			f.openLottery(t)
			f.sellThree(t)

			// Commit with the seed one slot behind, then move the clock to the test slot
			f.oracle.Publish(testRecord, 198)
			f.oracle.Publish(testOther, 198)
			f.clock.Set(199)
			_, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
			require.NoError(t, err)
			if tt.resolve {
				f.oracle.Resolve(testRecord, 199, 23)
			}
			f.clock.Set(tt.slot)

			before := f.lottery(t)
			result, err := f.service.ChooseWinner(ctx, testNamespace, tt.caller, tt.record)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, before, f.lottery(t))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(23%3), result.Lottery.Winner)
			assert.True(t, f.lottery(t).WinnerChosen)
		})
	}
}

func TestLotteryService_ChooseWinner_Latch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(0)
	f.openLottery(t)
	f.sellThree(t)
	f.oracle.Publish(testRecord, 200)
	f.clock.Set(201)
	_, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	f.oracle.Resolve(testRecord, 201, 4)

	first, err := f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Lottery.Winner)

	f.oracle.Resolve(testRecord, 201, 5)
	_, err = f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
	assert.ErrorIs(t, err, entities.ErrWinnerChosen)
	assert.Equal(t, int64(1), f.lottery(t).Winner)

	_, err = f.service.CommitRandomness(ctx, testNamespace, testAuthority, testOther)
	assert.ErrorIs(t, err, entities.ErrWinnerChosen)
}

func TestLotteryService_ChooseWinner_NoTickets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(0)
	f.openLottery(t)
	f.oracle.Publish(testRecord, 200)
	f.clock.Set(201)
	_, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	f.oracle.Resolve(testRecord, 201, 5)

	_, err = f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
	assert.ErrorIs(t, err, entities.ErrNoTickets)
	assert.False(t, f.lottery(t).WinnerChosen)
}

func TestLotteryService_ClaimPrize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		claimant    common.Address
		ticket      int
		prepare     func(t *testing.T, f *lotteryFixture, credentials []*entities.TicketCredential)
		expectedErr error
	}{
		{name: "winner", claimant: testBuyerC, ticket: 2},
		{name: "non-winning ticket", claimant: testBuyerA, ticket: 0, expectedErr: entities.ErrIncorrectTicket},
		{name: "winning ticket not held", claimant: testBuyerA, ticket: 2, expectedErr: entities.ErrNoTicket},
		{
			name:     "transferred winning ticket",
			claimant: testBuyerA,
			ticket:   2,
			prepare: func(t *testing.T, f *lotteryFixture, credentials []*entities.TicketCredential) {
				_, err := f.service.TransferTicket(context.Background(), testNamespace, testBuyerC, credentials[2].ID, testBuyerA)
				require.NoError(t, err)
			},
		},
		{
			name:     "unverified ticket",
			claimant: testBuyerC,
			ticket:   2,
			prepare: func(t *testing.T, f *lotteryFixture, credentials []*entities.TicketCredential) {
				f.registry.Unverify(credentials[2].ID)
			},
			expectedErr: entities.ErrNotVerified,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newLotteryFixture(0)
			f.openLottery(t)
			credentials := f.sellThree(t)
			f.oracle.Publish(testRecord, 200)
			f.clock.Set(201)
			_, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
			require.NoError(t, err)
			f.oracle.Resolve(testRecord, 201, 5)
			_, err = f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
			require.NoError(t, err)
			if tt.prepare != nil {
				tt.prepare(t, f, credentials)
			}
			balance := f.ledger.Balance(tt.claimant)

			result, err := f.service.ClaimPrize(ctx, testNamespace, tt.claimant, credentials[tt.ticket].ID)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, int64(150), f.lottery(t).PotAmount)
				assert.Equal(t, balance, f.ledger.Balance(tt.claimant))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(150), result.Amount)
			assert.Equal(t, balance+150, f.ledger.Balance(tt.claimant))
		})
	}
}

func TestLotteryService_ClaimPrize_BeforeWinner(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(0)
	f.openLottery(t)
	credentials := f.sellThree(t)

	_, err := f.service.ClaimPrize(context.Background(), testNamespace, testBuyerA, credentials[0].ID)
	assert.ErrorIs(t, err, entities.ErrWinnerNotChosen)
}

func TestLotteryService_ClaimPrize_UnknownCredential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(0)
	f.openLottery(t)
	f.sellThree(t)
	f.oracle.Publish(testRecord, 200)
	f.clock.Set(201)
	_, err := f.service.CommitRandomness(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)
	f.oracle.Resolve(testRecord, 201, 5)
	_, err = f.service.ChooseWinner(ctx, testNamespace, testAuthority, testRecord)
	require.NoError(t, err)

	_, err = f.service.ClaimPrize(ctx, testNamespace, testBuyerC, entities.TicketCredentialID("other_lottery", 2))
	assert.ErrorIs(t, err, entities.ErrIncorrectTicket)
}

func TestLotteryService_GetLottery(t *testing.T) {
	t.Parallel()

	f := newLotteryFixture(0)
	f.openLottery(t)
	f.sellThree(t)

	view, err := f.service.GetLottery(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, entities.LotteryPhaseOpen, view.Phase)
	assert.Equal(t, int64(150), view.CurrentSlot)
	require.Len(t, view.Recent, 5)
	assert.Equal(t, entities.TransitionBuyTicket, view.Recent[0].Kind)

	_, err = f.service.GetLottery(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrLotteryNotFound)
}

func TestLotteryService_TransferTicket(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLotteryFixture(0)
	f.openLottery(t)
	credentials := f.sellThree(t)

	_, err := f.service.TransferTicket(ctx, testNamespace, testBuyerB, credentials[0].ID, testBuyerC)
	assert.ErrorIs(t, err, entities.ErrNoTicket)

	moved, err := f.service.TransferTicket(ctx, testNamespace, testBuyerA, credentials[0].ID, testBuyerC)
	require.NoError(t, err)
	assert.Equal(t, testBuyerC, moved.Owner)

	held, err := f.service.ListTickets(ctx, testNamespace, testBuyerC)
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, int64(0), held[0].Sequence)
	assert.Equal(t, int64(2), held[1].Sequence)

	_, err = f.service.TransferTicket(ctx, testNamespace, testBuyerA, entities.TicketCredentialID("other", 0), testBuyerC)
	assert.ErrorIs(t, err, entities.ErrIncorrectTicket)
}

func TestLotteryService_RepositoryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setupMocks  func(*testhelpers.MockLotteryRepository, *testhelpers.MockSlotClock)
		errContains string
	}{
		{
			name: "clock failure",
			setupMocks: func(lotteryRepo *testhelpers.MockLotteryRepository, clock *testhelpers.MockSlotClock) {
				clock.On("CurrentSlot", mock.Anything).Return(int64(0), errors.New("clock down"))
			},
			errContains: "failed to read current slot",
		},
		{
			name: "lock failure",
			setupMocks: func(lotteryRepo *testhelpers.MockLotteryRepository, clock *testhelpers.MockSlotClock) {
				clock.On("CurrentSlot", mock.Anything).Return(int64(150), nil)
				lotteryRepo.On("GetByNamespaceForUpdate", mock.Anything, testNamespace).Return(nil, errors.New("database error"))
			},
			errContains: "failed to lock lottery",
		},
		{
			name: "lottery missing",
			setupMocks: func(lotteryRepo *testhelpers.MockLotteryRepository, clock *testhelpers.MockSlotClock) {
				clock.On("CurrentSlot", mock.Anything).Return(int64(150), nil)
				lotteryRepo.On("GetByNamespaceForUpdate", mock.Anything, testNamespace).Return(nil, nil)
			},
			errContains: entities.ErrLotteryNotFound.Error(),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lotteryRepo := new(testhelpers.MockLotteryRepository)
			clock := new(testhelpers.MockSlotClock)
			tt.setupMocks(lotteryRepo, clock)

			service := NewLotteryService(
				lotteryRepo,
				new(testhelpers.MockTransitionLogRepository),
				new(testhelpers.MockLedger),
				new(testhelpers.MockTicketRegistry),
				new(testhelpers.MockRandomnessOracle),
				clock,
				new(testhelpers.MockEventPublisher),
			)

			_, err := service.BuyTicket(context.Background(), testNamespace, testBuyerA)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			lotteryRepo.AssertExpectations(t)
			clock.AssertExpectations(t)
		})
	}
}

func TestLotteryService_BuyTicket_PublishesEvent(t *testing.T) {
	t.Parallel()

	lottery := &entities.Lottery{
		ID:                    1,
		Namespace:             testNamespace,
		Authority:             testAuthority,
		StartSlot:             100,
		EndSlot:               200,
		TicketPrice:           50,
		PotAmount:             100,
		TotalTickets:          2,
		CollectionInitialized: true,
	}
	collection := &entities.TicketCollection{Namespace: testNamespace, CollectionKey: entities.CollectionKey(testNamespace)}
	credential := &entities.TicketCredential{ID: entities.TicketCredentialID(testNamespace, 2), Sequence: 2}

	lotteryRepo := new(testhelpers.MockLotteryRepository)
	transitionRepo := new(testhelpers.MockTransitionLogRepository)
	ledger := new(testhelpers.MockLedger)
	registry := new(testhelpers.MockTicketRegistry)
	clock := new(testhelpers.MockSlotClock)
	publisher := new(testhelpers.MockEventPublisher)

	clock.On("CurrentSlot", mock.Anything).Return(int64(150), nil)
	lotteryRepo.On("GetByNamespaceForUpdate", mock.Anything, testNamespace).Return(lottery, nil)
	registry.On("GetCollection", mock.Anything, testNamespace).Return(collection, nil)
	ledger.On("Debit", mock.Anything, testBuyerA, int64(50)).Return(nil)
	registry.On("MintAndRegister", mock.Anything, testBuyerA, collection.CollectionKey, testNamespace, int64(2)).Return(credential, nil)
	lotteryRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *entities.Lottery) bool {
		return l.TotalTickets == 3 && l.PotAmount == 150
	})).Return(nil)
	transitionRepo.On("Record", mock.Anything, mock.MatchedBy(func(tr *entities.LotteryTransition) bool {
		return tr.Kind == entities.TransitionBuyTicket && tr.Amount == 50 && tr.Actor == testBuyerA
	})).Return(nil)
	publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		purchased, ok := e.(events.TicketPurchasedEvent)
		return ok && purchased.Sequence == 2 && purchased.PotAmount == 150
	})).Return(nil)

	service := NewLotteryService(lotteryRepo, transitionRepo, ledger, registry, new(testhelpers.MockRandomnessOracle), clock, publisher)

	result, err := service.BuyTicket(context.Background(), testNamespace, testBuyerA)
	require.NoError(t, err)
	assert.Equal(t, credential, result.Credential)

	lotteryRepo.AssertExpectations(t)
	transitionRepo.AssertExpectations(t)
	ledger.AssertExpectations(t)
	registry.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
