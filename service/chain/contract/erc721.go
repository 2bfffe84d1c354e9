package contract

import (
	"errors"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/xerrors"

	baseabi "github.com/x-xyz/marketledger/base/abi"
	bCtx "github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/service/chain"
)

// Erc721 reads custody of ERC-721 tokens deployed on one chain
type Erc721 struct {
	chainService      chain.Client
	chainId           int32
	abi               ethabi.ABI
	erc721InterfaceId [4]byte
}

// NewErc721 returns an asset.Oracle backed by contract calls
func NewErc721(chainService chain.Client, chainId int32) *Erc721 {
	var interfaceId [4]byte
	copy(interfaceId[:], common.Hex2Bytes("80ac58cd"))
	return &Erc721{
		abi:               baseabi.ERC721TokenABI,
		chainService:      chainService,
		chainId:           chainId,
		erc721InterfaceId: interfaceId,
	}
}

var _ asset.Oracle = (*Erc721)(nil)

// isRevert tells a contract revert from a transport failure
func isRevert(err error) bool {
	var dataErr rpc.DataError
	return errors.As(err, &dataErr) || strings.Contains(err.Error(), "execution reverted")
}

func (e *Erc721) call(ctx bCtx.Ctx, addr domain.Address, method string, params ...interface{}) ([]interface{}, error) {
	return e.chainService.Call(ctx, e.chainId, common.HexToAddress(string(addr)), e.abi, method, params...)
}

func (e *Erc721) Supports721Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	unpacked, err := e.call(ctx, addr, "supportsInterface", e.erc721InterfaceId)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

// requireCollection fails with asset.ErrUnknownCollection for a non ERC-721 address
func (e *Erc721) requireCollection(ctx bCtx.Ctx, addr domain.Address) error {
	ok, err := e.Supports721Interface(ctx, addr)
	// a plain account or another contract reverts or returns no data
	if err != nil && !isRevert(err) && !strings.HasPrefix(err.Error(), "abi:") {
		return err
	}
	if err != nil || !ok {
		return xerrors.Errorf("%s: %w", addr, asset.ErrUnknownCollection)
	}
	return nil
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	if err := e.requireCollection(ctx, addr); err != nil {
		return "", err
	}
	id := tokenId.BigInt()
	if id == nil {
		return "", xerrors.Errorf("token %q: %w", tokenId, asset.ErrUnknownToken)
	}
	unpacked, err := e.call(ctx, addr, "ownerOf", id)
	if err != nil {
		if isRevert(err) {
			return "", xerrors.Errorf("token %s: %w", tokenId, asset.ErrUnknownToken)
		}
		return "", err
	}
	return domain.Address(strings.ToLower(unpacked[0].(common.Address).Hex())), nil
}

func (e *Erc721) GetApproved(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	unpacked, err := e.call(ctx, addr, "getApproved", tokenId.BigInt())
	if err != nil {
		return "", err
	}
	return domain.Address(strings.ToLower(unpacked[0].(common.Address).Hex())), nil
}

func (e *Erc721) IsApprovedForAll(ctx bCtx.Ctx, addr domain.Address, owner, operator domain.Address) (bool, error) {
	unpacked, err := e.call(ctx, addr, "isApprovedForAll", common.HexToAddress(string(owner)), common.HexToAddress(string(operator)))
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) IsApprovedOperator(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error) {
	owner, err := e.OwnerOf(ctx, addr, tokenId)
	if err != nil {
		return false, err
	}
	approved, err := e.GetApproved(ctx, addr, tokenId)
	if err != nil {
		return false, err
	}
	if approved.Equals(operator) {
		return true, nil
	}
	return e.IsApprovedForAll(ctx, addr, owner, operator)
}
