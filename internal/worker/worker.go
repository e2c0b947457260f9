package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/database"
	"github.com/wnt/swaplens/internal/indexer"
	"github.com/wnt/swaplens/internal/ingest"
	"github.com/wnt/swaplens/internal/logger"
	"github.com/wnt/swaplens/internal/metrics"
	"github.com/wnt/swaplens/internal/queue"
)

// Worker pulls wallets off the queue and classifies their transaction
// history into swap and erase records.
type Worker struct {
	id       string
	queue    *queue.Client
	fetcher  *indexer.Fetcher
	store    *database.Store
	pipeline *classifier.Pipeline
	logger   zerolog.Logger
	stopped  bool
}

// NewWorker creates a new worker instance
func NewWorker(id string, queueClient *queue.Client, fetcher *indexer.Fetcher, store *database.Store, pipeline *classifier.Pipeline, baseLogger zerolog.Logger) *Worker {
	return &Worker{
		id:       id,
		queue:    queueClient,
		fetcher:  fetcher,
		store:    store,
		pipeline: pipeline,
		logger:   logger.WithWorker(baseLogger, id),
	}
}

// Start begins the worker processing loop
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Worker received shutdown signal")
			return ctx.Err()
		default:
			if w.stopped {
				w.logger.Info().Msg("Worker stopped")
				return nil
			}

			if err := w.processWallet(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Failed to process wallet")
				// Continue processing other wallets even if one fails

				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// Stop signals the worker to stop gracefully
func (w *Worker) Stop() {
	w.stopped = true
	w.logger.Info().Msg("Worker stop signal received")
}

// processWallet handles the complete lifecycle of classifying a single wallet
func (w *Worker) processWallet(ctx context.Context) error {
	wallet, err := w.queue.PopWallet(ctx)
	if err != nil {
		return fmt.Errorf("failed to pop wallet from queue: %w", err)
	}

	// No wallet available
	if wallet == "" {
		// Brief pause when queue is empty to avoid spinning
		select {
		case <-time.After(10 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	if err := w.queue.SetInFlight(ctx, wallet, w.id); err != nil {
		w.logger.Error().Err(err).Str("wallet", wallet).Msg("Failed to mark wallet as in-flight")
		// Re-queue the wallet since we couldn't track it
		if requeueErr := w.queue.PushWallet(ctx, wallet, 0); requeueErr != nil {
			w.logger.Error().Err(requeueErr).Str("wallet", wallet).Msg("Failed to requeue wallet after in-flight error")
		}
		return err
	}

	walletLogger := logger.WithWallet(w.logger, wallet)
	startTime := time.Now()

	walletLogger.Info().Msg("Starting wallet classification")

	err = w.classifyWallet(ctx, wallet, walletLogger)
	duration := time.Since(startTime)

	metrics.RecordWalletClassify(duration.Seconds())
	metrics.RecordWorkerTaskDuration("wallet_classify", w.id, duration.Seconds())

	if removeErr := w.queue.RemoveInFlight(ctx, wallet); removeErr != nil {
		walletLogger.Error().Err(removeErr).Msg("Failed to remove wallet from in-flight tracking")
	}

	if err != nil {
		walletLogger.Error().Err(err).Dur("duration", duration).Msg("Failed to classify wallet")

		// Re-queue with lower priority (higher score) on failure
		if requeueErr := w.queue.PushWallet(ctx, wallet, float64(time.Now().Unix())); requeueErr != nil {
			walletLogger.Error().Err(requeueErr).Msg("Failed to requeue failed wallet")
		}

		return fmt.Errorf("wallet classification failed: %w", err)
	}

	walletLogger.Info().Dur("duration", duration).Msg("Wallet classification completed successfully")
	return nil
}

// classifyWallet walks the wallet's transaction history oldest-cursor-first
// and classifies every transaction.
func (w *Worker) classifyWallet(ctx context.Context, wallet string, logger zerolog.Logger) error {
	row, err := w.store.GetOrCreateWallet(wallet)
	if err != nil {
		return err
	}

	// Resume from the last classified signature if we have one
	before, err := w.queue.GetProgress(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to get wallet progress: %w", err)
	}

	if before != "" {
		logger.Debug().Str("last_signature", before).Msg("Resuming from last classified signature")
	} else {
		logger.Debug().Msg("Starting fresh wallet classification")
	}

	const batchSize = 100
	var (
		txCount, swapCount, eraseCount int
		oldest, newest                 time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		txs, err := w.fetcher.FetchAddressTransactions(ctx, wallet, before, batchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch transactions: %w", err)
		}

		if len(txs) == 0 {
			break
		}

		logger.Debug().Int("transactions", len(txs)).Msg("Fetched transaction batch")

		for _, tx := range txs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, classified, err := w.classifyTransaction(tx, row.ID, logger)
			if err != nil {
				logger.Warn().Err(err).Str("signature", tx.Signature).Msg("Failed to classify transaction, continuing")
				continue
			}
			if !classified {
				continue
			}

			txCount++
			if result.Erased() {
				eraseCount++
			} else {
				swapCount += len(result.Swaps)
			}

			blockTime := ingest.Convert(tx).Timestamp
			if oldest.IsZero() || blockTime.Before(oldest) {
				oldest = blockTime
			}
			if blockTime.After(newest) {
				newest = blockTime
			}
		}

		before = txs[len(txs)-1].Signature
		if err := w.queue.SetProgress(ctx, wallet, before); err != nil {
			logger.Warn().Err(err).Str("signature", before).Msg("Failed to update progress")
		}

		if len(txs) < batchSize {
			break
		}

		// Brief pause between batches to be nice to the indexer
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := w.store.UpdateWalletStats(row.ID, txCount, swapCount, eraseCount, oldest, newest); err != nil {
		logger.Warn().Err(err).Msg("Failed to update wallet stats")
	}

	logger.Info().
		Int("transactions", txCount).
		Int("swaps", swapCount).
		Int("erases", eraseCount).
		Msg("Wallet classification completed")
	return nil
}

// classifyTransaction runs one transaction through the pipeline and persists
// the outcome. The second return reports whether the transaction was newly
// classified; failed and already-seen transactions are skipped.
func (w *Worker) classifyTransaction(tx indexer.Transaction, walletID uint, logger zerolog.Logger) (classifier.Result, bool, error) {
	if tx.Failed() {
		logger.Debug().Str("signature", tx.Signature).Msg("Skipping failed transaction")
		return classifier.Result{}, false, nil
	}

	seen, err := w.store.HasSignature(tx.Signature)
	if err != nil {
		return classifier.Result{}, false, err
	}
	if seen {
		return classifier.Result{}, false, nil
	}

	input := ingest.Convert(tx)

	start := time.Now()
	result, err := w.pipeline.Classify(input)
	metrics.RecordClassification(time.Since(start).Seconds())

	if err != nil {
		if classifier.IsInvariantViolation(err) {
			metrics.RecordInvariantViolation(invariantStage(err))
		}
		return classifier.Result{}, false, fmt.Errorf("classify %s: %w", tx.Signature, err)
	}

	if err := w.store.SaveResult(walletID, input.Timestamp, result); err != nil {
		metrics.RecordDatabaseOperation("insert", "failed")
		return classifier.Result{}, false, err
	}
	metrics.RecordDatabaseOperation("insert", "success")

	if result.Erased() {
		metrics.RecordErase(string(result.Erase.Reason))
	} else {
		for _, swap := range result.Swaps {
			metrics.RecordSwapClassified(string(swap.Direction), string(swap.Confidence))
		}
		if len(result.Swaps) > 1 {
			metrics.SplitSwaps.Inc()
		}
	}

	return result, true, nil
}

func invariantStage(err error) string {
	var violation *classifier.InvariantViolationError
	if errors.As(err, &violation) {
		return violation.Stage
	}
	return "unknown"
}
