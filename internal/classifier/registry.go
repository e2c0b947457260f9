package classifier

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Mints treated as priority quote assets by default.
const (
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint       = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// Known system, token-program, router and AMM authority addresses. Pools and
// vaults show the largest raw deltas in any swap, so these must never be
// considered swapper candidates.
var defaultExcludedAddresses = []string{
	"11111111111111111111111111111111",             // system program
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",  // token program
	"TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb",  // token-2022 program
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", // associated token account program
	"ComputeBudget111111111111111111111111111111",  // compute budget program
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", // raydium amm v4
	"5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1", // raydium amm authority
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",  // jupiter v6 router
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc",  // orca whirlpool
	"LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo",  // meteora dlmm
	"Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB", // meteora pools
	"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P",  // pump.fun
}

var defaultSymbols = map[string]string{
	WrappedSOLMint: "SOL",
	USDCMint:       "USDC",
	USDTMint:       "USDT",
}

// DerivedAddressPredicate reports whether an address looks like a
// program-derived account and therefore cannot be a swapper wallet.
type DerivedAddressPredicate func(address string) bool

// NoDerivedAddressDetection is the predicate that never flags an address.
func NoDerivedAddressDetection(string) bool {
	return false
}

// OffCurveDerivedAddressDetection flags addresses whose public key does not
// lie on the ed25519 curve. Program-derived accounts are off-curve by
// construction; regular wallet keys are not. Addresses that fail to decode
// are not flagged so that the identifier, not this predicate, decides what
// to do with malformed owners.
func OffCurveDerivedAddressDetection(address string) bool {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return false
	}
	return !pk.IsOnCurve()
}

// Registry holds the static lookup tables and thresholds shared by all
// pipeline stages. It is built once at process start and treated as
// read-only afterwards, so it is safe to share across goroutines.
type Registry struct {
	NativeMint            string
	PriorityMints         map[string]struct{}
	ExcludedAddresses     map[string]struct{}
	Symbols               map[string]string
	RentThreshold         decimal.Decimal
	IntermediateEpsilon   decimal.Decimal
	DustThreshold         decimal.Decimal
	SignificanceThreshold decimal.Decimal
	Protocol              string
	IsDerivedAddress      DerivedAddressPredicate
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithProtocol sets the provenance tag stamped on every ParsedSwap.
func WithProtocol(tag string) RegistryOption {
	return func(r *Registry) {
		r.Protocol = tag
	}
}

// WithRentThreshold overrides the rent-noise threshold (native-asset units).
func WithRentThreshold(threshold decimal.Decimal) RegistryOption {
	return func(r *Registry) {
		r.RentThreshold = threshold
	}
}

// WithThresholds overrides the intermediate epsilon, the dust threshold for
// near-zero nets, and the gross significance threshold for split detection.
func WithThresholds(epsilon, dust, significance decimal.Decimal) RegistryOption {
	return func(r *Registry) {
		r.IntermediateEpsilon = epsilon
		r.DustThreshold = dust
		r.SignificanceThreshold = significance
	}
}

// WithExcludedAddresses adds addresses to the swapper-candidacy exclusion set.
func WithExcludedAddresses(addresses ...string) RegistryOption {
	return func(r *Registry) {
		for _, addr := range addresses {
			r.ExcludedAddresses[addr] = struct{}{}
		}
	}
}

// WithPriorityMints replaces the priority mint set. The native mint is always
// kept as a priority asset.
func WithPriorityMints(mints ...string) RegistryOption {
	return func(r *Registry) {
		r.PriorityMints = map[string]struct{}{r.NativeMint: {}}
		for _, mint := range mints {
			r.PriorityMints[mint] = struct{}{}
		}
	}
}

// WithSymbols adds display symbols for mints. Best effort only, never
// authoritative.
func WithSymbols(symbols map[string]string) RegistryOption {
	return func(r *Registry) {
		for mint, symbol := range symbols {
			r.Symbols[mint] = symbol
		}
	}
}

// WithDerivedAddressPredicate replaces the program-derived-address check.
func WithDerivedAddressPredicate(predicate DerivedAddressPredicate) RegistryOption {
	return func(r *Registry) {
		r.IsDerivedAddress = predicate
	}
}

// NewRegistry builds a Registry with the default Solana tables and applies
// the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		NativeMint: WrappedSOLMint,
		PriorityMints: map[string]struct{}{
			WrappedSOLMint: {},
			USDCMint:       {},
			USDTMint:       {},
		},
		ExcludedAddresses:     make(map[string]struct{}, len(defaultExcludedAddresses)),
		Symbols:               make(map[string]string, len(defaultSymbols)),
		RentThreshold:         decimal.RequireFromString("0.01"),
		IntermediateEpsilon:   decimal.RequireFromString("0.000000001"),
		DustThreshold:         decimal.RequireFromString("0.001"),
		SignificanceThreshold: decimal.RequireFromString("0.01"),
		Protocol:              "unknown",
		IsDerivedAddress:      OffCurveDerivedAddressDetection,
	}

	for _, addr := range defaultExcludedAddresses {
		r.ExcludedAddresses[addr] = struct{}{}
	}
	for mint, symbol := range defaultSymbols {
		r.Symbols[mint] = symbol
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// IsNative reports whether mint is the chain's native asset.
func (r *Registry) IsNative(mint string) bool {
	return mint == r.NativeMint
}

// IsPriority reports whether mint is a priority quote asset.
func (r *Registry) IsPriority(mint string) bool {
	_, ok := r.PriorityMints[mint]
	return ok
}

// IsExcluded reports whether an address can never be a swapper candidate.
func (r *Registry) IsExcluded(address string) bool {
	_, ok := r.ExcludedAddresses[address]
	return ok
}

// SymbolFor returns the display symbol for a mint, falling back to a
// shortened mint string when unknown.
func (r *Registry) SymbolFor(mint string) string {
	if symbol, ok := r.Symbols[mint]; ok {
		return symbol
	}
	if len(mint) > 8 {
		return mint[:4] + ".." + mint[len(mint)-4:]
	}
	return mint
}
