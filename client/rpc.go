package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"time"

	"github.com/AccumulateNetwork/jsonrpc2/v15"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
)

// JSON-RPC method names of the oracle API.
const (
	MethodSubmitBatch = "submit-batch"
	MethodTxStatus    = "tx-status"
	MethodAccountInfo = "account-info"
	MethodTxFee       = "tx-fee"
	MethodBalance     = "balance"
)

// ErrCodeBase anchors the registered error codes inside the JSON-RPC
// application error range: wire code = ErrCodeBase - registered code.
const ErrCodeBase jsonrpc2.ErrorCode = -41000

// RPCError converts a module error into its wire form. Used by the
// server side of the oracle API.
func RPCError(err error) jsonrpc2.Error {
	return jsonrpc2.NewError(ErrCodeBase-jsonrpc2.ErrorCode(errors.CodeOf(err)), err.Error(), nil)
}

// SubmitBatchParams is the submission payload: the serialized
// transactions plus one root-chain signature per required signer, in
// signer order.
type SubmitBatchParams struct {
	Txs           []json.RawMessage `json:"txs"`
	EthSignatures []string          `json:"ethSignatures"`
}

type SubmitBatchResult struct {
	TxHashes []string `json:"txHashes"`
}

type TxStatusParams struct {
	TxHash string `json:"txHash"`
}

type TxStatusResult struct {
	Status string `json:"status"`
}

type AccountInfoParams struct {
	Address stratum.Address `json:"address"`
}

type TxFeeParams struct {
	TxTypes   []string          `json:"txTypes"`
	Addresses []stratum.Address `json:"addresses"`
	Token     uint32            `json:"token"`
}

type TxFeeResult struct {
	TotalFee string `json:"totalFee"`
}

type BalanceParams struct {
	Address stratum.Address `json:"address"`
	Token   uint32          `json:"token"`
	Status  string          `json:"status"`
}

type BalanceResult struct {
	Balance string `json:"balance"`
}

// ParseBlockStatus decodes the wire form of a confirmation stage.
func ParseBlockStatus(s string) (stratum.BlockStatus, error) {
	switch s {
	case stratum.StatusPending.String():
		return stratum.StatusPending, nil
	case stratum.StatusCommitted.String():
		return stratum.StatusCommitted, nil
	case stratum.StatusVerified.String():
		return stratum.StatusVerified, nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "unknown status %q", s)
	}
}

// RPCProvider talks to a remote oracle over JSON-RPC HTTP.
type RPCProvider struct {
	Server string
	jsonrpc2.Client
}

var _ Provider = (*RPCProvider)(nil)

// NewRPCProvider creates a provider for the given server endpoint.
func NewRPCProvider(server string) *RPCProvider {
	p := &RPCProvider{Server: server}
	p.Timeout = 15 * time.Second
	return p
}

// request performs one call and converts wire errors back into module
// errors.
func (p *RPCProvider) request(ctx context.Context, method string, params, result interface{}) error {
	err := p.Client.Request(ctx, p.Server, method, params, result)
	if err == nil {
		return nil
	}
	if rpcErr, ok := err.(jsonrpc2.Error); ok && rpcErr.Code <= ErrCodeBase {
		return errors.FromCode(uint32(ErrCodeBase-rpcErr.Code), rpcErr.Message)
	}
	return errors.Wrap(errors.ErrNetwork, err.Error())
}

func (p *RPCProvider) SubmitBatch(ctx context.Context, txs []stratum.Tx, sigs []crypto.EthSignature) ([]stratum.TxHash, error) {
	params := SubmitBatchParams{
		Txs:           make([]json.RawMessage, len(txs)),
		EthSignatures: make([]string, len(sigs)),
	}
	for i, tx := range txs {
		raw, err := json.Marshal(tx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "transaction %d: %s", i, err)
		}
		params.Txs[i] = raw
	}
	for i, sig := range sigs {
		params.EthSignatures[i] = hex.EncodeToString(sig)
	}

	var res SubmitBatchResult
	if err := p.request(ctx, MethodSubmitBatch, &params, &res); err != nil {
		return nil, err
	}
	hashes := make([]stratum.TxHash, len(res.TxHashes))
	for i, h := range res.TxHashes {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrNetwork, "malformed tx hash")
		}
		hashes[i] = raw
	}
	return hashes, nil
}

func (p *RPCProvider) TxStatus(ctx context.Context, hash stratum.TxHash) (stratum.BlockStatus, error) {
	var res TxStatusResult
	if err := p.request(ctx, MethodTxStatus, &TxStatusParams{TxHash: hash.String()}, &res); err != nil {
		return 0, err
	}
	return ParseBlockStatus(res.Status)
}

func (p *RPCProvider) AccountInfo(ctx context.Context, addr stratum.Address) (*AccountInfo, error) {
	var res AccountInfo
	if err := p.request(ctx, MethodAccountInfo, &AccountInfoParams{Address: addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *RPCProvider) TxFee(ctx context.Context, kinds []string, accounts []stratum.Address, tok uint32) (*big.Int, error) {
	params := TxFeeParams{TxTypes: kinds, Addresses: accounts, Token: tok}
	var res TxFeeResult
	if err := p.request(ctx, MethodTxFee, &params, &res); err != nil {
		return nil, err
	}
	fee, ok := new(big.Int).SetString(res.TotalFee, 10)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNetwork, "malformed fee %q", res.TotalFee)
	}
	return fee, nil
}

func (p *RPCProvider) Balance(ctx context.Context, addr stratum.Address, tok uint32, status stratum.BlockStatus) (*big.Int, error) {
	params := BalanceParams{Address: addr, Token: tok, Status: status.String()}
	var res BalanceResult
	if err := p.request(ctx, MethodBalance, &params, &res); err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(res.Balance, 10)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNetwork, "malformed balance %q", res.Balance)
	}
	return balance, nil
}
