package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestERC721TokenABI(t *testing.T) {
	req := require.New(t)

	for _, m := range []string{"supportsInterface", "ownerOf", "getApproved", "isApprovedForAll"} {
		_, ok := ERC721TokenABI.Methods[m]
		req.True(ok, m)
	}

	data, err := ERC721TokenABI.Pack("ownerOf", big.NewInt(1))
	req.NoError(err)
	req.Equal(common.Hex2Bytes("6352211e"), data[:4])

	out, err := ERC721TokenABI.Methods["isApprovedForAll"].Outputs.Pack(true)
	req.NoError(err)
	unpacked, err := ERC721TokenABI.Unpack("isApprovedForAll", out)
	req.NoError(err)
	req.Equal(true, unpacked[0])
}
