package backend

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// Conversion from go-ethereum types into the backend-native record form the
// outbound validators consume: hashes and addresses as raw byte strings,
// numeric fields as *big.Int, lists as []any. Fork-introduced header fields
// are set only when the header carries them; the fork-field resolver
// injects the null sentinel for the rest.

func blockToRecord(blk *types.Block, signer types.Signer, fullTransactions bool) (entity.Record, error) {
	header := blk.Header()

	difficulty := new(big.Int)
	if header.Difficulty != nil {
		difficulty.Set(header.Difficulty)
	}

	rec := entity.Record{
		"number":            new(big.Int).Set(blk.Number()),
		"hash":              blk.Hash().Bytes(),
		"parent_hash":       header.ParentHash.Bytes(),
		"nonce":             header.Nonce[:],
		"sha3_uncles":       header.UncleHash.Bytes(),
		"logs_bloom":        new(big.Int).SetBytes(header.Bloom[:]),
		"transactions_root": header.TxHash.Bytes(),
		"receipts_root":     header.ReceiptHash.Bytes(),
		"state_root":        header.Root.Bytes(),
		"coinbase":          header.Coinbase.Bytes(),
		"difficulty":        difficulty,
		"mix_hash":          header.MixDigest.Bytes(),
		// Standard RPC block fetches carry no total difficulty; the shape
		// check only needs a non-negative integer.
		"total_difficulty": new(big.Int).Set(difficulty),
		"size":             new(big.Int).SetUint64(blk.Size()),
		"extra_data":       extraData32(header.Extra),
		"gas_limit":        new(big.Int).SetUint64(header.GasLimit),
		"gas_used":         new(big.Int).SetUint64(header.GasUsed),
		"timestamp":        new(big.Int).SetUint64(header.Time),
		"uncles":           uncleHashes(blk.Uncles()),
	}

	txs, err := transactionList(blk, signer, fullTransactions)
	if err != nil {
		return nil, err
	}
	rec["transactions"] = txs

	if header.BaseFee != nil {
		rec["base_fee_per_gas"] = new(big.Int).Set(header.BaseFee)
	}
	if header.WithdrawalsHash != nil {
		rec["withdrawals_root"] = header.WithdrawalsHash.Bytes()
		rec["withdrawals"] = withdrawalList(blk.Withdrawals())
	}
	if header.ParentBeaconRoot != nil {
		rec["parent_beacon_block_root"] = header.ParentBeaconRoot.Bytes()
	}
	if header.BlobGasUsed != nil {
		rec["blob_gas_used"] = new(big.Int).SetUint64(*header.BlobGasUsed)
	}
	if header.ExcessBlobGas != nil {
		rec["excess_blob_gas"] = new(big.Int).SetUint64(*header.ExcessBlobGas)
	}
	if header.RequestsHash != nil {
		rec["requests_hash"] = header.RequestsHash.Bytes()
	}

	return rec, nil
}

// extraData32 fits the header extra data into the fixed 32 byte shape the
// outbound schema expects, padding short values and truncating long ones.
func extraData32(extra []byte) []byte {
	out := make([]byte, 32)
	copy(out, extra)
	return out
}

func uncleHashes(uncles []*types.Header) []any {
	out := make([]any, len(uncles))
	for i, uncle := range uncles {
		out[i] = uncle.Hash().Bytes()
	}
	return out
}

func transactionList(blk *types.Block, signer types.Signer, fullTransactions bool) ([]any, error) {
	txs := blk.Transactions()
	out := make([]any, len(txs))
	for i, tx := range txs {
		if !fullTransactions {
			out[i] = tx.Hash().Bytes()
			continue
		}
		rec, err := transactionToRecord(tx, signer, blk.Hash(), blk.Number(), i)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}

func transactionToRecord(tx *types.Transaction, signer types.Signer, blockHash common.Hash, blockNumber *big.Int, index int) (entity.Record, error) {
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}

	v, r, s := tx.RawSignatureValues()

	data := tx.Data()
	if data == nil {
		data = []byte{}
	}

	rec := entity.Record{
		"type":              big.NewInt(int64(tx.Type())),
		"hash":              tx.Hash().Bytes(),
		"nonce":             new(big.Int).SetUint64(tx.Nonce()),
		"block_hash":        blockHash.Bytes(),
		"block_number":      new(big.Int).Set(blockNumber),
		"transaction_index": big.NewInt(int64(index)),
		"from":              from.Bytes(),
		"to":                recipient(tx.To()),
		"value":             new(big.Int).Set(tx.Value()),
		"gas":               new(big.Int).SetUint64(tx.Gas()),
		"gas_price":         new(big.Int).Set(tx.GasPrice()),
		"data":              data,
		"v":                 new(big.Int).Set(v),
		"r":                 new(big.Int).Set(r),
		"s":                 new(big.Int).Set(s),
	}

	if tx.Type() >= types.AccessListTxType {
		rec["chain_id"] = new(big.Int).Set(tx.ChainId())
		// Typed transactions carry the parity bit in the raw v slot.
		rec["y_parity"] = new(big.Int).Set(v)
		rec["access_list"] = accessListEntries(tx.AccessList())
	}
	if tx.Type() >= types.DynamicFeeTxType {
		rec["max_fee_per_gas"] = new(big.Int).Set(tx.GasFeeCap())
		rec["max_priority_fee_per_gas"] = new(big.Int).Set(tx.GasTipCap())
	}
	if tx.Type() == types.BlobTxType {
		rec["max_fee_per_blob_gas"] = new(big.Int).Set(tx.BlobGasFeeCap())
		rec["blob_versioned_hashes"] = hashList(tx.BlobHashes())
	}
	if tx.Type() == types.SetCodeTxType {
		rec["authorization_list"] = authorizationEntries(tx.SetCodeAuthorizations())
	}

	return rec, nil
}

func recipient(to *common.Address) any {
	if to == nil {
		return entity.CreateAddress
	}
	return to.Bytes()
}

func accessListEntries(list types.AccessList) []any {
	out := make([]any, len(list))
	for i, tuple := range list {
		keys := make([]any, len(tuple.StorageKeys))
		for j, key := range tuple.StorageKeys {
			keys[j] = new(big.Int).SetBytes(key[:])
		}
		out[i] = []any{tuple.Address.Bytes(), keys}
	}
	return out
}

func authorizationEntries(auths []types.SetCodeAuthorization) []any {
	out := make([]any, len(auths))
	for i := range auths {
		auth := &auths[i]
		out[i] = entity.Record{
			"chain_id": auth.ChainID.ToBig(),
			"address":  auth.Address.Bytes(),
			"nonce":    new(big.Int).SetUint64(auth.Nonce),
			"y_parity": big.NewInt(int64(auth.V)),
			"r":        auth.R.ToBig(),
			"s":        auth.S.ToBig(),
		}
	}
	return out
}

func hashList(hashes []common.Hash) []any {
	out := make([]any, len(hashes))
	for i, h := range hashes {
		out[i] = h.Bytes()
	}
	return out
}

func withdrawalList(withdrawals types.Withdrawals) []any {
	out := make([]any, len(withdrawals))
	for i, w := range withdrawals {
		out[i] = entity.Record{
			"index":           new(big.Int).SetUint64(w.Index),
			"validator_index": new(big.Int).SetUint64(w.Validator),
			"address":         w.Address.Bytes(),
			"amount":          new(big.Int).SetUint64(w.Amount),
		}
	}
	return out
}

func receiptToRecord(receipt *types.Receipt, tx *types.Transaction, signer types.Signer) (entity.Record, error) {
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}

	rec := entity.Record{
		"transaction_hash":    receipt.TxHash.Bytes(),
		"transaction_index":   big.NewInt(int64(receipt.TransactionIndex)),
		"block_number":        blockNumberOrNull(receipt.BlockNumber),
		"block_hash":          blockHashOrNull(receipt.BlockHash),
		"cumulative_gas_used": new(big.Int).SetUint64(receipt.CumulativeGasUsed),
		"effective_gas_price": bigOrNull(receipt.EffectiveGasPrice),
		"from":                from.Bytes(),
		"gas_used":            new(big.Int).SetUint64(receipt.GasUsed),
		"contract_address":    contractAddress(receipt.ContractAddress),
		"logs":                logEntries(receipt.Logs),
		"state_root":          stateRoot(receipt.PostState),
		"status":              new(big.Int).SetUint64(receipt.Status),
		"to":                  recipient(tx.To()),
		"type":                big.NewInt(int64(receipt.Type)),
	}

	if receipt.Type == types.BlobTxType {
		rec["blob_gas_used"] = new(big.Int).SetUint64(receipt.BlobGasUsed)
		rec["blob_gas_price"] = bigOrZero(receipt.BlobGasPrice)
	}

	return rec, nil
}

func blockNumberOrNull(number *big.Int) any {
	if number == nil {
		return entity.Null
	}
	return new(big.Int).Set(number)
}

func blockHashOrNull(hash common.Hash) any {
	if hash == (common.Hash{}) {
		return entity.Null
	}
	return hash.Bytes()
}

func bigOrNull(n *big.Int) any {
	if n == nil {
		return entity.Null
	}
	return new(big.Int).Set(n)
}

func bigOrZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n)
}

func contractAddress(addr common.Address) any {
	if addr == (common.Address{}) {
		return entity.Null
	}
	return addr.Bytes()
}

func stateRoot(postState []byte) []byte {
	if postState == nil {
		return []byte{}
	}
	return postState
}

func logEntries(logs []*types.Log) []any {
	out := make([]any, len(logs))
	for i, l := range logs {
		out[i] = logToRecord(l)
	}
	return out
}

func logToRecord(l *types.Log) entity.Record {
	data := l.Data
	if data == nil {
		data = []byte{}
	}
	topics := make([]any, len(l.Topics))
	for i, topic := range l.Topics {
		topics[i] = topic.Bytes()
	}
	return entity.Record{
		"type":              "mined",
		"log_index":         big.NewInt(int64(l.Index)),
		"transaction_index": big.NewInt(int64(l.TxIndex)),
		"transaction_hash":  l.TxHash.Bytes(),
		"block_hash":        blockHashOrNull(l.BlockHash),
		"block_number":      new(big.Int).SetUint64(l.BlockNumber),
		"address":           l.Address.Bytes(),
		"data":              data,
		"topics":            topics,
	}
}
