// Package ledger checks token transfers against an EVM chain so a reward
// can be tied to a confirmed on-chain transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Set of errors returned by the ledger.
var (
	ErrInvalidHash  = errors.New("invalid transaction hash")
	ErrNotConfirmed = errors.New("transfer not confirmed on chain")
)

var hashRE = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ChainReader is the subset of the ethclient API the ledger needs.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
}

// DefaultTimeout bounds a confirmation when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Config represents the settings for reaching the chain.
type Config struct {
	RPCURL         string
	RewardContract string
	Timeout        time.Duration
}

// Ledger provides read access to transfers on the chain.
type Ledger struct {
	reader         ChainReader
	rewardContract *common.Address
	timeout        time.Duration
	close          func()
}

// New dials the configured RPC endpoint.
func New(ctx context.Context, cfg Config) (*Ledger, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.RPCURL, err)
	}

	l, err := NewWithReader(client, cfg.RewardContract)
	if err != nil {
		client.Close()
		return nil, err
	}
	l.close = client.Close
	if cfg.Timeout > 0 {
		l.timeout = cfg.Timeout
	}

	return l, nil
}

// NewWithReader constructs a ledger over an existing chain reader. An empty
// reward contract disables the destination check.
func NewWithReader(reader ChainReader, rewardContract string) (*Ledger, error) {
	l := Ledger{
		reader:  reader,
		timeout: DefaultTimeout,
		close:   func() {},
	}

	if rewardContract != "" {
		if !common.IsHexAddress(rewardContract) {
			return nil, fmt.Errorf("invalid reward contract address %q", rewardContract)
		}
		addr := common.HexToAddress(rewardContract)
		l.rewardContract = &addr
	}

	return &l, nil
}

// Close releases the underlying RPC connection.
func (l *Ledger) Close() {
	l.close()
}

// ConfirmTransfer verifies the transaction was mined successfully and, when
// a reward contract is configured, that it was sent to that contract.
func (l *Ledger) ConfirmTransfer(ctx context.Context, txHash string) error {
	if err := CheckHash(txHash); err != nil {
		return err
	}
	hash := common.HexToHash(txHash)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	receipt, err := l.reader.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("%w: no receipt for %s", ErrNotConfirmed, txHash)
		}
		return fmt.Errorf("receipt %s: %w", txHash, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: transaction %s reverted", ErrNotConfirmed, txHash)
	}

	if l.rewardContract == nil {
		return nil
	}

	tx, _, err := l.reader.TransactionByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", txHash, err)
	}

	if tx.To() == nil || *tx.To() != *l.rewardContract {
		return fmt.Errorf("%w: transaction %s was not sent to the reward contract", ErrNotConfirmed, txHash)
	}

	return nil
}

// CheckHash reports ErrInvalidHash unless txHash is a 0x-prefixed 32 byte
// hex string.
func CheckHash(txHash string) error {
	if !hashRE.MatchString(txHash) {
		return fmt.Errorf("%w: %q", ErrInvalidHash, txHash)
	}
	return nil
}
