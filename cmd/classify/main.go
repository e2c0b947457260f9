package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"
	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/indexer"
	"github.com/wnt/swaplens/internal/ingest"
)

// classify runs the swap classification pipeline over a file of enriched
// provider transactions and prints the outcome of each as JSON. Useful for
// debugging single transactions without Redis or postgres.
func main() {
	var (
		filePath = flag.String("file", "", "Path to a JSON file holding one transaction or an array of transactions ('-' for stdin)")
		strategy = flag.String("strategy", "escalation", "Swapper identification strategy: escalation or largest_delta")
		protocol = flag.String("protocol", "unknown", "Protocol tag stamped on the output records")
		verbose  = flag.Bool("verbose", false, "Enable debug logging to stderr")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: classify -file <transactions.json> [-strategy escalation|largest_delta] [-protocol tag]")
		os.Exit(1)
	}

	txs, err := readTransactions(*filePath)
	if err != nil {
		log.Fatalf("Failed to read transactions: %v", err)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	lg := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	registry := classifier.NewRegistry(classifier.WithProtocol(*protocol))
	identifier, err := classifier.NewIdentifier(*strategy, registry)
	if err != nil {
		log.Fatalf("Invalid strategy: %v", err)
	}
	pipeline := classifier.NewPipeline(registry, identifier, lg)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	exitCode := 0
	for _, tx := range txs {
		if tx.Failed() {
			lg.Warn().Str("signature", tx.Signature).Msg("Skipping failed transaction")
			continue
		}

		result, err := pipeline.Classify(ingest.Convert(tx))
		if err != nil {
			lg.Error().Err(err).Str("signature", tx.Signature).Msg("Classification failed")
			exitCode = 1
			continue
		}

		if result.Erased() {
			encoder.Encode(map[string]interface{}{"erase": result.Erase})
			continue
		}
		encoder.Encode(map[string]interface{}{"swaps": result.Swaps})
	}

	os.Exit(exitCode)
}

// readTransactions accepts both a single transaction object and an array.
func readTransactions(path string) ([]indexer.Transaction, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var txs []indexer.Transaction
	if err := json.Unmarshal(data, &txs); err == nil {
		return txs, nil
	}

	var tx indexer.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []indexer.Transaction{tx}, nil
}
