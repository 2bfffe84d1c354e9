package contract

import (
	"errors"
	"math/big"
	"testing"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
)

var (
	collection = domain.Address("0x71c4658acc7b53ee814a29ce31100ff85ca23ca7")
	holder     = domain.Address("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	operator   = domain.Address("0x5fbdb2315678afecb367f032d93f642f64180aa3")
)

// fakeChain answers calls from canned results keyed by method
type fakeChain struct {
	results map[string][]interface{}
	errs    map[string]error
	calls   []string
}

func (f *fakeChain) Call(ctx bCtx.Ctx, chainId int32, addr common.Address, _abi ethabi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	f.calls = append(f.calls, method)
	if _, ok := _abi.Methods[method]; !ok {
		return nil, errors.New("unknown method " + method)
	}
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	return f.results[method], nil
}

type erc721Suite struct {
	suite.Suite

	chain *fakeChain
	e     *Erc721
}

func TestErc721(t *testing.T) {
	suite.Run(t, new(erc721Suite))
}

func (s *erc721Suite) SetupTest() {
	s.chain = &fakeChain{
		results: map[string][]interface{}{
			"supportsInterface": {true},
			"ownerOf":           {common.HexToAddress(string(holder))},
			"getApproved":       {common.Address{}},
			"isApprovedForAll":  {false},
		},
		errs: map[string]error{},
	}
	s.e = NewErc721(s.chain, 1)
}

func (s *erc721Suite) TestOwnerOf() {
	owner, err := s.e.OwnerOf(bCtx.Background(), collection, "1")
	s.Require().NoError(err)
	s.Equal(holder, owner)
	s.Equal([]string{"supportsInterface", "ownerOf"}, s.chain.calls)
}

func (s *erc721Suite) TestOwnerOfUnknownCollection() {
	s.chain.results["supportsInterface"] = []interface{}{false}
	_, err := s.e.OwnerOf(bCtx.Background(), collection, "1")
	s.ErrorIs(err, asset.ErrUnknownCollection)
	s.ErrorIs(err, domain.ErrUnrecognized)

	s.chain.errs["supportsInterface"] = errors.New("execution reverted")
	_, err = s.e.OwnerOf(bCtx.Background(), collection, "1")
	s.ErrorIs(err, asset.ErrUnknownCollection)
}

func (s *erc721Suite) TestOwnerOfUnknownToken() {
	s.chain.errs["ownerOf"] = errors.New("execution reverted: ERC721: invalid token ID")
	_, err := s.e.OwnerOf(bCtx.Background(), collection, "1")
	s.ErrorIs(err, asset.ErrUnknownToken)
}

func (s *erc721Suite) TestTransportFailure() {
	boom := errors.New("connection refused")
	s.chain.errs["supportsInterface"] = boom
	_, err := s.e.OwnerOf(bCtx.Background(), collection, "1")
	s.ErrorIs(err, boom)
}

func (s *erc721Suite) TestIsApprovedOperator() {
	ok, err := s.e.IsApprovedOperator(bCtx.Background(), collection, "1", operator)
	s.Require().NoError(err)
	s.False(ok)

	s.chain.results["getApproved"] = []interface{}{common.HexToAddress(string(operator))}
	ok, err = s.e.IsApprovedOperator(bCtx.Background(), collection, "1", operator)
	s.Require().NoError(err)
	s.True(ok)

	s.chain.results["getApproved"] = []interface{}{common.Address{}}
	s.chain.results["isApprovedForAll"] = []interface{}{true}
	ok, err = s.e.IsApprovedOperator(bCtx.Background(), collection, "1", operator)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *erc721Suite) TestTokenIdIsPacked() {
	id := domain.TokenId("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	s.Equal(0, id.BigInt().Cmp(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))))
	_, err := s.e.OwnerOf(bCtx.Background(), collection, id)
	s.NoError(err)
}
