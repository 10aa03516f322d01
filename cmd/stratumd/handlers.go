package main

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/AccumulateNetwork/jsonrpc2/v15"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/client"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/oracle"
)

// methodMap binds the oracle to the wire API the client package speaks.
func methodMap(o *oracle.Oracle) jsonrpc2.MethodMap {
	return jsonrpc2.MethodMap{
		client.MethodSubmitBatch: submitBatch(o),
		client.MethodTxStatus:    txStatus(o),
		client.MethodAccountInfo: accountInfo(o),
		client.MethodTxFee:       txFee(o),
		client.MethodBalance:     balance(o),
	}
}

func submitBatch(o *oracle.Oracle) jsonrpc2.MethodFunc {
	return func(_ context.Context, params json.RawMessage) interface{} {
		var req client.SubmitBatchParams
		if err := json.Unmarshal(params, &req); err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		txs := make([]stratum.Tx, len(req.Txs))
		for i, raw := range req.Txs {
			tx, err := stratum.UnmarshalTx(raw)
			if err != nil {
				return client.RPCError(err)
			}
			txs[i] = tx
		}
		sigs := make([]crypto.EthSignature, len(req.EthSignatures))
		for i, s := range req.EthSignatures {
			raw, err := hex.DecodeString(s)
			if err != nil {
				return jsonrpc2.ErrorInvalidParams("malformed signature")
			}
			sigs[i] = raw
		}

		receipts, err := o.ExecuteBatch(txs, sigs)
		if err != nil {
			return client.RPCError(err)
		}
		o.SealBlock()
		res := client.SubmitBatchResult{TxHashes: make([]string, len(receipts))}
		for i, r := range receipts {
			res.TxHashes[i] = r.Hash.String()
		}
		return res
	}
}

func txStatus(o *oracle.Oracle) jsonrpc2.MethodFunc {
	return func(_ context.Context, params json.RawMessage) interface{} {
		var req client.TxStatusParams
		if err := json.Unmarshal(params, &req); err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		hash, err := hex.DecodeString(req.TxHash)
		if err != nil {
			return jsonrpc2.ErrorInvalidParams("malformed tx hash")
		}
		return client.TxStatusResult{Status: o.TxStatus(hash).String()}
	}
}

func accountInfo(o *oracle.Oracle) jsonrpc2.MethodFunc {
	return func(_ context.Context, params json.RawMessage) interface{} {
		var req client.AccountInfoParams
		if err := json.Unmarshal(params, &req); err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		info, err := o.AccountInfo(req.Address)
		if err != nil {
			return client.RPCError(err)
		}
		return client.AccountInfo{Address: info.Address, ID: info.ID, Nonce: info.Nonce}
	}
}

func txFee(o *oracle.Oracle) jsonrpc2.MethodFunc {
	return func(_ context.Context, params json.RawMessage) interface{} {
		var req client.TxFeeParams
		if err := json.Unmarshal(params, &req); err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		fee, err := o.TxFee(req.TxTypes, req.Addresses, req.Token)
		if err != nil {
			return client.RPCError(err)
		}
		return client.TxFeeResult{TotalFee: fee.String()}
	}
}

func balance(o *oracle.Oracle) jsonrpc2.MethodFunc {
	return func(_ context.Context, params json.RawMessage) interface{} {
		var req client.BalanceParams
		if err := json.Unmarshal(params, &req); err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		status, err := client.ParseBlockStatus(req.Status)
		if err != nil {
			return jsonrpc2.ErrorInvalidParams(err.Error())
		}
		return client.BalanceResult{Balance: o.Balance(req.Address, req.Token, status).String()}
	}
}
