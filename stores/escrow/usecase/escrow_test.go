package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/escrow"
	mEscrow "github.com/x-xyz/marketledger/domain/escrow/mocks"
	"github.com/x-xyz/marketledger/domain/event"
	mPayment "github.com/x-xyz/marketledger/domain/payment/mocks"
)

var (
	vault = domain.Address("0x1a01ecd2263a9d5b5967667e508ea22db478bc4b")
	payee = domain.Address("0xdf8650b0ca1260f7a2f4fdff9082aede554f65ad")
	now   = time.Unix(1650000000, 0)
)

type testSuite struct {
	suite.Suite

	repo   *mEscrow.Repo
	wallet *mPayment.Transferrer
	im     escrow.Ledger
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) SetupTest() {
	s.repo = &mEscrow.Repo{}
	s.wallet = &mPayment.Transferrer{}
	s.im = New(s.repo, s.wallet, vault)
}

func (s *testSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
	s.wallet.AssertExpectations(s.T())
}

func (s *testSuite) TestCreditFirstPayment() {
	s.repo.On("FindOne", mock.Anything, payee).Return(nil, domain.ErrNotFound).Once()
	s.repo.On("Upsert", mock.Anything, &escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(100),
		UnlockAt: now.Add(time.Hour),
	}).Return(nil).Once()

	s.Require().NoError(s.im.Credit(ctx.Background(), payee, uint256.NewInt(100), time.Hour, now))
}

func (s *testSuite) TestCreditRearmsLock() {
	later := now.Add(10 * time.Minute)
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(100),
		UnlockAt: now.Add(time.Hour),
	}, nil).Once()
	s.repo.On("Upsert", mock.Anything, &escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(150),
		UnlockAt: later.Add(time.Hour),
	}).Return(nil).Once()

	s.Require().NoError(s.im.Credit(ctx.Background(), payee, uint256.NewInt(50), time.Hour, later))
}

func (s *testSuite) TestDepositKeepsLock() {
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(1),
		UnlockAt: now,
	}, nil).Once()
	s.repo.On("Upsert", mock.Anything, &escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(3),
		UnlockAt: now,
	}).Return(nil).Once()

	s.Require().NoError(s.im.Deposit(ctx.Background(), payee, uint256.NewInt(2)))
}

func (s *testSuite) TestCreditOverflow() {
	max := new(uint256.Int).SetAllOne()
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{Payee: payee, Pending: max}, nil).Once()

	err := s.im.Credit(ctx.Background(), payee, uint256.NewInt(1), time.Hour, now)
	s.True(domain.IsCode(err, domain.CodeOverflow))
	s.ErrorIs(err, domain.ErrOverflow)
}

func (s *testSuite) TestWithdrawNothing() {
	s.repo.On("FindOne", mock.Anything, payee).Return(nil, domain.ErrNotFound).Once()

	amount, ev, err := s.im.Withdraw(ctx.Background(), payee, now)
	s.Require().NoError(err)
	s.True(amount.IsZero())
	s.Nil(ev)
}

func (s *testSuite) TestWithdrawTooEarly() {
	unlockAt := now.Add(time.Second)
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(100),
		UnlockAt: unlockAt,
	}, nil).Once()

	_, _, err := s.im.Withdraw(ctx.Background(), payee, now)
	s.ErrorIs(err, domain.ErrTiming)

	var e *domain.Error
	s.Require().True(errors.As(err, &e))
	s.Equal(domain.CodeWithdrawalTooEarly, e.Code)
	s.Equal(now, e.Now)
	s.Equal(unlockAt, e.UnlockAt)
}

func (s *testSuite) TestWithdrawAtUnlock() {
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{
		Payee:    payee,
		Pending:  uint256.NewInt(100),
		UnlockAt: now,
	}, nil).Once()
	s.repo.On("Upsert", mock.Anything, &escrow.Balance{
		Payee:    payee,
		Pending:  domain.Zero(),
		UnlockAt: now,
	}).Return(nil).Once()
	s.wallet.On("Transfer", mock.Anything, vault, payee, uint256.NewInt(100)).Return(nil).Once()

	amount, ev, err := s.im.Withdraw(ctx.Background(), payee, now)
	s.Require().NoError(err)
	s.Equal(uint64(100), amount.Uint64())
	s.Require().NotNil(ev)
	s.Equal(event.NamePaymentsWithdrawn, ev.Name)
	s.Equal("100", ev.Amount)
}

func (s *testSuite) TestWithdrawTransferFailure() {
	boom := errors.New("transfer failed")
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{Payee: payee, Pending: uint256.NewInt(5)}, nil).Once()
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	s.wallet.On("Transfer", mock.Anything, vault, payee, uint256.NewInt(5)).Return(boom).Once()

	_, _, err := s.im.Withdraw(ctx.Background(), payee, now)
	s.ErrorIs(err, boom)
}

func (s *testSuite) TestBalanceOf() {
	s.repo.On("FindOne", mock.Anything, payee).Return(&escrow.Balance{Payee: payee, Pending: uint256.NewInt(42), UnlockAt: now}, nil).Twice()

	b, err := s.im.BalanceOf(ctx.Background(), payee)
	s.Require().NoError(err)
	s.Equal(uint64(42), b.Uint64())

	at, err := s.im.UnlockAt(ctx.Background(), payee)
	s.Require().NoError(err)
	s.Equal(now, at)
}
