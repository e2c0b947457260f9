package classifier

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a classified swap from the swapper's perspective.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Confidence is the trust level attached to a swapper identification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Identification method tags carried on SwapperResult and ParsedSwap.
const (
	MethodFeePayer      = "fee_payer"
	MethodSigner        = "signer"
	MethodOwnerAnalysis = "owner_analysis"
	MethodLargestDelta  = "largest_delta"
	MethodErase         = "erase"
)

// EraseReason enumerates the terminal non-swap outcomes.
type EraseReason string

const (
	EraseNoSwapper          EraseReason = "no_swapper"
	EraseMultipleCandidates EraseReason = "multiple_candidates"
	EraseSwapperNoDelta     EraseReason = "swapper_no_delta"
)

// BalanceChange is one observed movement of one asset for one owner within a
// transaction, as reported by the indexing provider. Amounts are human-scale
// signed decimals, already adjusted for the asset's decimals.
type BalanceChange struct {
	Mint     string
	Owner    string
	Amount   decimal.Decimal
	Decimals int32

	// Optional pre/post balances, present only for some provider shapes.
	PreBalance  *decimal.Decimal
	PostBalance *decimal.Decimal
}

// Transfer is one itemized movement between two owners. Amount is a positive
// human-scale decimal; direction is carried by FromOwner/ToOwner.
type Transfer struct {
	Mint      string
	FromOwner string
	ToOwner   string
	Amount    decimal.Decimal
	Decimals  int32
}

// Transaction is the pipeline input: a single transaction's identity plus the
// provider's balance-change feed. Transfers is populated only for providers
// that report itemized transfers; when present it takes precedence during
// delta aggregation.
type Transaction struct {
	Signature string
	Timestamp time.Time
	FeePayer  string
	Signers   []string
	Changes   []BalanceChange
	Transfers []Transfer
}

// FilteredChanges partitions the swapper-owned balance changes into economic
// changes and rent-refund noise. Constructed once per transaction by the
// NoiseFilter and never mutated afterwards.
type FilteredChanges struct {
	Economic    []BalanceChange
	NonEconomic []BalanceChange
}

// RentRefundsFiltered reports whether any change was discarded as rent noise.
func (f FilteredChanges) RentRefundsFiltered() bool {
	return len(f.NonEconomic) > 0
}

// SwapperResult is the outcome of swapper identification. A zero Swapper
// address means identification failed and EraseReason is set.
type SwapperResult struct {
	Swapper     string
	Confidence  Confidence
	Method      string
	EraseReason EraseReason
}

// Resolved reports whether a swapper wallet was identified.
func (r SwapperResult) Resolved() bool {
	return r.Swapper != ""
}

// AssetDelta is the per-mint aggregate of the swapper's economic changes.
// GrossIn and GrossOut are positive magnitudes of the total inflow and
// outflow legs; Delta is their signed net.
type AssetDelta struct {
	Mint           string
	Symbol         string
	Decimals       int32
	Delta          decimal.Decimal
	GrossIn        decimal.Decimal
	GrossOut       decimal.Decimal
	IsIntermediate bool
}

// SplitDetection is the split-swap decision over the aggregated deltas.
// Entry is the asset the swapper gave up (negative delta) and Exit the asset
// received (positive delta); both invariants are enforced downstream by the
// OutputGenerator rather than assumed here.
type SplitDetection struct {
	SplitRequired bool
	Entry         AssetDelta
	Exit          AssetDelta
	Intermediate  *AssetDelta
	SplitReason   string
}

// ParsedSwap is the canonical output record consumed by alerting and
// persistence. Base is always the traded token and Quote the priority asset
// it was traded against, per the direction convention.
type ParsedSwap struct {
	Signature     string          `json:"signature"`
	Timestamp     time.Time       `json:"timestamp"`
	Swapper       string          `json:"swapper"`
	Confidence    Confidence      `json:"confidence"`
	Method        string          `json:"method"`
	Protocol      string          `json:"protocol"`
	Direction     Direction       `json:"direction"`
	BaseMint      string          `json:"baseMint"`
	BaseSymbol    string          `json:"baseSymbol"`
	BaseDecimals  int32           `json:"baseDecimals"`
	QuoteMint     string          `json:"quoteMint"`
	QuoteSymbol   string          `json:"quoteSymbol"`
	QuoteDecimals int32           `json:"quoteDecimals"`
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	QuoteAmount   decimal.Decimal `json:"quoteAmount"`

	// Provenance flags for downstream consumers.
	RentRefundsFiltered         bool `json:"rentRefundsFiltered"`
	IntermediateAssetsCollapsed bool `json:"intermediateAssetsCollapsed"`
}

// EraseResult is the terminal rejection outcome when a transaction cannot be
// classified as a swap.
type EraseResult struct {
	Signature string      `json:"signature"`
	Reason    EraseReason `json:"reason"`
	DebugInfo string      `json:"debugInfo,omitempty"`
}

// Result is the pipeline output: either one or two ParsedSwap records, or a
// single EraseResult, never both.
type Result struct {
	Swaps []ParsedSwap
	Erase *EraseResult
}

// Erased reports whether the transaction was rejected.
func (r Result) Erased() bool {
	return r.Erase != nil
}
