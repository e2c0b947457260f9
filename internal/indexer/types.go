package indexer

// Transaction is one enriched transaction as returned by the ledger-indexing
// provider. The same record carries both data shapes the classifier
// understands: account-level balance changes and itemized transfers.
type Transaction struct {
	Description      string            `json:"description"`
	Type             string            `json:"type"`
	Source           string            `json:"source"`
	Fee              int64             `json:"fee"`
	FeePayer         string            `json:"feePayer"`
	Signature        string            `json:"signature"`
	Slot             int64             `json:"slot"`
	Timestamp        int64             `json:"timestamp"`
	Signers          []string          `json:"signers"`
	NativeTransfers  []NativeTransfer  `json:"nativeTransfers"`
	TokenTransfers   []TokenTransfer   `json:"tokenTransfers"`
	AccountData      []AccountData     `json:"accountData"`
	TransactionError *TransactionError `json:"transactionError"`
}

// NativeTransfer is an itemized SOL movement between two user accounts.
// Amount is in lamports.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// TokenTransfer is an itemized SPL token movement. TokenAmount is already
// decimal-adjusted by the provider.
type TokenTransfer struct {
	FromUserAccount  string  `json:"fromUserAccount"`
	ToUserAccount    string  `json:"toUserAccount"`
	FromTokenAccount string  `json:"fromTokenAccount"`
	ToTokenAccount   string  `json:"toTokenAccount"`
	TokenAmount      float64 `json:"tokenAmount"`
	Decimals         int32   `json:"decimals"`
	Mint             string  `json:"mint"`
}

// AccountData carries the per-account balance changes of a transaction.
type AccountData struct {
	Account             string               `json:"account"`
	NativeBalanceChange int64                `json:"nativeBalanceChange"`
	TokenBalanceChanges []TokenBalanceChange `json:"tokenBalanceChanges"`
}

// TokenBalanceChange is one account-level token movement in raw units.
type TokenBalanceChange struct {
	UserAccount    string         `json:"userAccount"`
	TokenAccount   string         `json:"tokenAccount"`
	Mint           string         `json:"mint"`
	RawTokenAmount RawTokenAmount `json:"rawTokenAmount"`
}

// RawTokenAmount is a raw integer amount as a string plus the mint decimals.
type RawTokenAmount struct {
	TokenAmount string `json:"tokenAmount"`
	Decimals    int32  `json:"decimals"`
}

// TransactionError is the provider's error payload for failed transactions.
type TransactionError struct {
	Error string `json:"error"`
}

// Failed reports whether the transaction errored on chain. Failed
// transactions still carry balance data but are not classified.
func (t Transaction) Failed() bool {
	return t.TransactionError != nil && t.TransactionError.Error != ""
}
