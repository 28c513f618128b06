package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/askchain/askchain/foundation/ledger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	rewardContract = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	otherContract  = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	txHash         = "0x8f3c7a0e5d1b2c4a6e9f0d3b5a7c9e1f2d4b6a8c0e2f4a6b8d0c2e4f6a8b0c2d"
)

type chain struct {
	receipt *types.Receipt
	to      string
	err     error
}

func (c chain) TransactionReceipt(ctx context.Context, h common.Hash) (*types.Receipt, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.receipt, nil
}

func (c chain) TransactionByHash(ctx context.Context, h common.Hash) (*types.Transaction, bool, error) {
	to := common.HexToAddress(c.to)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
	return tx, false, nil
}

func Test_ConfirmTransfer(t *testing.T) {
	ok := &types.Receipt{Status: types.ReceiptStatusSuccessful}
	reverted := &types.Receipt{Status: types.ReceiptStatusFailed}

	tt := []struct {
		name   string
		hash   string
		chain  chain
		expErr error
	}{
		{"confirmed", txHash, chain{receipt: ok, to: rewardContract}, nil},
		{"bad-hash", "0x1234", chain{receipt: ok, to: rewardContract}, ledger.ErrInvalidHash},
		{"reverted", txHash, chain{receipt: reverted, to: rewardContract}, ledger.ErrNotConfirmed},
		{"unknown", txHash, chain{err: ethereum.NotFound}, ledger.ErrNotConfirmed},
		{"wrong-contract", txHash, chain{receipt: ok, to: otherContract}, ledger.ErrNotConfirmed},
	}

	t.Log("Given the need to confirm reward transfers on chain.")
	{
		for testID, tst := range tt {
			testID, tst := testID, tst
			f := func(t *testing.T) {
				l, err := ledger.NewWithReader(tst.chain, rewardContract)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct a ledger: %v", failed, testID, err)
				}

				err = l.ConfirmTransfer(context.Background(), tst.hash)
				switch tst.expErr {
				case nil:
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould confirm the transfer: %v", failed, testID, err)
					}
				default:
					if !errors.Is(err, tst.expErr) {
						t.Fatalf("\t%s\tTest %d:\tShould fail with %v: got %v", failed, testID, tst.expErr, err)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould handle the %s case.", success, testID, tst.name)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_RPCFailure(t *testing.T) {
	t.Log("Given the need to separate RPC failures from unconfirmed transfers.")
	{
		testID := 0
		l, err := ledger.NewWithReader(chain{err: errors.New("connection refused")}, "")
		if err != nil {
			t.Fatalf("\t%s\tTest %d:\tShould be able to construct a ledger: %v", failed, testID, err)
		}

		err = l.ConfirmTransfer(context.Background(), txHash)
		if err == nil || errors.Is(err, ledger.ErrNotConfirmed) {
			t.Fatalf("\t%s\tTest %d:\tShould report an RPC failure distinctly: %v", failed, testID, err)
		}
		t.Logf("\t%s\tTest %d:\tShould report an RPC failure distinctly.", success, testID)
	}
}
