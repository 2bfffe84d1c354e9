package usecase

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/gate"
	mGate "github.com/x-xyz/marketledger/domain/gate/mocks"
)

var (
	owner    = domain.Address("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	stranger = domain.Address("0x54a769173d97432a48371b022709117c090298e3")
)

type testSuite struct {
	suite.Suite

	repo *mGate.Repo
	cfg  gate.Config
	im   gate.Gate
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) SetupTest() {
	s.repo = &mGate.Repo{}
	s.cfg = gate.Config{
		Owner:            owner,
		ListingFee:       uint256.NewInt(10),
		WithdrawalPeriod: time.Hour,
	}
	s.im = New(s.repo)
}

func (s *testSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
}

// stored returns a copy of the stored config on every Get
func (s *testSuite) stored() {
	s.repo.On("Get", mock.Anything).Return(func(ctx.Ctx) *gate.Config {
		cp := s.cfg
		return &cp
	}, nil)
}

func (s *testSuite) TestInit() {
	s.repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound).Once()
	s.repo.On("Put", mock.Anything, &gate.Config{
		Owner:            owner,
		ListingFee:       uint256.NewInt(10),
		WithdrawalPeriod: time.Hour,
	}).Return(nil).Once()

	ok, err := s.im.Init(ctx.Background(), s.cfg)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *testSuite) TestInitSkippedWhenStored() {
	s.stored()

	ok, err := s.im.Init(ctx.Background(), gate.Config{Owner: stranger})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *testSuite) TestInitZeroOwner() {
	s.repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound).Once()

	_, err := s.im.Init(ctx.Background(), gate.Config{})
	s.True(domain.IsCode(err, domain.CodeZeroAddressOwner))
}

func (s *testSuite) TestPauseUnpause() {
	s.stored()
	s.repo.On("Put", mock.Anything, mock.AnythingOfType("*gate.Config")).Return(func(_ ctx.Ctx, cfg *gate.Config) error {
		s.cfg = *cfg
		return nil
	})

	c := ctx.Background()
	s.Require().NoError(s.im.RequireActive(c))

	ev, err := s.im.Pause(c, owner)
	s.Require().NoError(err)
	s.Equal(event.NamePaused, ev.Name)
	s.Equal(owner, ev.Account)
	s.True(s.cfg.Paused)

	err = s.im.RequireActive(c)
	s.True(domain.IsCode(err, domain.CodePaused))
	s.ErrorIs(err, domain.ErrState)

	_, err = s.im.Pause(c, owner)
	s.True(domain.IsCode(err, domain.CodePaused))

	ev, err = s.im.Unpause(c, owner)
	s.Require().NoError(err)
	s.Equal(event.NameUnpaused, ev.Name)
	s.False(s.cfg.Paused)

	_, err = s.im.Unpause(c, owner)
	s.True(domain.IsCode(err, domain.CodeNotPaused))
}

func (s *testSuite) TestOwnerOnly() {
	s.stored()
	c := ctx.Background()

	calls := map[string]func() error{
		"pause": func() error { _, err := s.im.Pause(c, stranger); return err },
		"transfer": func() error {
			_, err := s.im.TransferOwnership(c, stranger, stranger)
			return err
		},
		"renounce": func() error { _, err := s.im.RenounceOwnership(c, stranger); return err },
		"fee":      func() error { _, err := s.im.SetListingFee(c, stranger, uint256.NewInt(1)); return err },
		"period":   func() error { _, err := s.im.SetWithdrawalPeriod(c, stranger, time.Minute); return err },
	}
	for name, call := range calls {
		err := call()
		s.True(domain.IsCode(err, domain.CodeCallerNotOwner), name)
		s.ErrorIs(err, domain.ErrAuthorization, name)
	}
}

func (s *testSuite) TestTransferOwnership() {
	s.stored()
	s.repo.On("Put", mock.Anything, mock.AnythingOfType("*gate.Config")).Return(func(_ ctx.Ctx, cfg *gate.Config) error {
		s.cfg = *cfg
		return nil
	})
	c := ctx.Background()

	_, err := s.im.TransferOwnership(c, owner, domain.EmptyAddress)
	s.True(domain.IsCode(err, domain.CodeZeroAddressOwner))

	ev, err := s.im.TransferOwnership(c, owner, stranger)
	s.Require().NoError(err)
	s.Equal(event.NameOwnershipTransferred, ev.Name)
	s.Equal(owner, ev.Previous)
	s.Equal(stranger, ev.Account)

	s.Error(s.im.RequireOwner(c, owner))
	s.NoError(s.im.RequireOwner(c, stranger))
}

func (s *testSuite) TestRenounceIsFinal() {
	s.stored()
	s.repo.On("Put", mock.Anything, mock.AnythingOfType("*gate.Config")).Return(func(_ ctx.Ctx, cfg *gate.Config) error {
		s.cfg = *cfg
		return nil
	})
	c := ctx.Background()

	ev, err := s.im.RenounceOwnership(c, owner)
	s.Require().NoError(err)
	s.Equal(domain.EmptyAddress, ev.Account)
	s.True(s.cfg.Owner.IsEmpty())

	for _, caller := range []domain.Address{owner, domain.EmptyAddress, ""} {
		s.True(domain.IsCode(s.im.RequireOwner(c, caller), domain.CodeCallerNotOwner))
	}
}

func (s *testSuite) TestSetters() {
	s.stored()
	s.repo.On("Put", mock.Anything, mock.AnythingOfType("*gate.Config")).Return(func(_ ctx.Ctx, cfg *gate.Config) error {
		s.cfg = *cfg
		return nil
	})
	c := ctx.Background()

	ev, err := s.im.SetListingFee(c, owner, domain.Zero())
	s.Require().NoError(err)
	s.Equal(event.NameListingFeeSet, ev.Name)
	s.Equal("0", ev.Amount)
	s.True(s.cfg.ListingFee.IsZero())

	ev, err = s.im.SetWithdrawalPeriod(c, owner, 0)
	s.Require().NoError(err)
	s.Equal(event.NameWithdrawalPeriodSet, ev.Name)
	s.Require().NotNil(ev.Period)
	s.Equal(int64(0), *ev.Period)

	_, err = s.im.SetWithdrawalPeriod(c, owner, -time.Second)
	s.ErrorIs(err, domain.ErrUnrecognized)
}
