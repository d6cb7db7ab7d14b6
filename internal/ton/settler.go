package ton

import (
	"context"
	"fmt"
	"strings"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/logger"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Settler pays withdrawals out of a hot wallet. One hash unit converts to
// NanoPerHash nanoTON.
type Settler struct {
	client      *ton.APIClient
	wallet      *wallet.Wallet
	network     Network
	nanoPerHash uint64
}

// NewSettler connects to the lite servers and derives the hot wallet from
// the mnemonic (24 words, V5R1).
func NewSettler(ctx context.Context, mnemonic string, network Network, nanoPerHash uint64) (*Settler, error) {
	configURL := "https://ton.org/global.config.json"
	if network == NetworkTestnet {
		configURL = "https://ton.org/testnet-global.config.json"
	}

	client := liteclient.NewConnectionPool()
	if err := client.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("failed to connect to lite servers: %w", err)
	}
	api := ton.NewAPIClient(client)

	words := strings.Fields(strings.TrimSpace(mnemonic))
	if len(words) != 24 {
		return nil, fmt.Errorf("invalid mnemonic: expected 24 words, got %d", len(words))
	}

	networkID := int32(-239)
	if network == NetworkTestnet {
		networkID = -3
	}
	w, err := wallet.FromSeed(api, words, wallet.ConfigV5R1Final{
		NetworkGlobalID: networkID,
		Workchain:       0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet from seed: %w", err)
	}

	return &Settler{client: api, wallet: w, network: network, nanoPerHash: nanoPerHash}, nil
}

func (s *Settler) Address() string {
	return s.wallet.WalletAddress().String()
}

func (s *Settler) Balance(ctx context.Context) (uint64, error) {
	block, err := s.client.CurrentMasterchainInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get masterchain info: %w", err)
	}
	acc, err := s.client.GetAccount(ctx, block, s.wallet.WalletAddress())
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if acc.State == nil {
		return 0, nil
	}
	return acc.State.Balance.Nano().Uint64(), nil
}

// Settle sends the payout with the withdrawal ref as the transfer comment
// and returns the on-chain transaction hash.
func (s *Settler) Settle(ctx context.Context, w *domain.WithdrawalRequest) (string, error) {
	var addr *address.Address
	var err error
	if strings.Contains(w.Address, ":") {
		addr, err = ParseRawAddress(w.Address)
	} else {
		addr, err = address.ParseAddr(w.Address)
	}
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	amountNano := uint64(w.Amount) * s.nanoPerHash

	balance, err := s.Balance(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check balance: %w", err)
	}
	networkFee := uint64(10_000_000) // ~0.01 TON
	if balance < amountNano+networkFee {
		return "", fmt.Errorf("insufficient hot wallet balance: have %d, need %d + fee", balance, amountNano)
	}

	amount := tlb.MustFromTON(fmt.Sprintf("%.9f", float64(amountNano)/1e9))
	msg := &wallet.Message{
		Mode: wallet.PayGasSeparately + wallet.IgnoreErrors,
		InternalMessage: &tlb.InternalMessage{
			IHRDisabled: true,
			Bounce:      false,
			DstAddr:     addr,
			Amount:      amount,
			Body:        buildCommentCell(w.Ref),
		},
	}

	tx, _, err := s.wallet.SendWaitTransaction(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return fmt.Sprintf("%x", tx.Hash), nil
}

// buildCommentCell: 32 zero bits (op 0) + UTF-8 text.
func buildCommentCell(comment string) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0, 32).
		MustStoreStringSnake(comment).
		EndCell()
}

// DryRunSettler completes payouts without touching the chain. Used when no
// hot wallet is configured, e.g. in staging.
type DryRunSettler struct{}

func (DryRunSettler) Settle(_ context.Context, w *domain.WithdrawalRequest) (string, error) {
	logger.Info("dry-run settlement", "ref", w.Ref, "amount", w.Amount, "address", w.Address)
	return "dry-run:" + w.Ref, nil
}
