package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"workfolio/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 1

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second

	// DefaultSweepInterval is how often open records are retried outside the stream
	DefaultSweepInterval = time.Minute

	sweepBatch = 100
)

// Manager runs goroutines that consume the consistency stream plus one sweeper.
type Manager struct {
	consumer      queue.Consumer
	handler       *Handler
	log           *zap.Logger
	workerCount   int
	batchSize     int64
	blockTime     time.Duration
	sweepInterval time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount   int
	BatchSize     int64
	BlockTimeout  time.Duration
	SweepInterval time.Duration
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:   DefaultWorkerCount,
		BatchSize:     DefaultBatchSize,
		BlockTimeout:  DefaultBlockTimeout,
		SweepInterval: DefaultSweepInterval,
	}
}

func NewManager(consumer queue.Consumer, handler *Handler, log *zap.Logger, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	return &Manager{
		consumer:      consumer,
		handler:       handler,
		log:           log,
		workerCount:   cfg.WorkerCount,
		batchSize:     cfg.BatchSize,
		blockTime:     cfg.BlockTimeout,
		sweepInterval: cfg.SweepInterval,
	}
}

// Start ensures the consumer group and launches the workers. Call Stop to shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamConsistency, queue.ConsumerGroupConsistency); err != nil {
		m.cancel()
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		m.wg.Add(1)
		go m.runWorker(workerID, consumerNameForWorker(workerID))
	}

	m.wg.Add(1)
	go m.runSweeper()

	m.log.Info("workers started",
		zap.Int("workers", m.workerCount),
		zap.String("stream", queue.StreamConsistency),
		zap.String("group", queue.ConsumerGroupConsistency))
	return nil
}

// Stop cancels the workers and blocks until they exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.log.Info("workers stopped")
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()

	// Crash recovery: finish anything delivered to this consumer but never acked.
	m.processPending(workerID, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.processMessages(workerID, consumerName)
		}
	}
}

func (m *Manager) runSweeper() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.handler.Sweep(m.ctx, sweepBatch); err != nil && m.ctx.Err() == nil {
				m.log.Warn("sweep failed", zap.Error(err))
			}
		}
	}
}

func (m *Manager) processPending(workerID int, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamConsistency, queue.ConsumerGroupConsistency, consumerName, m.batchSize)
		if err != nil {
			m.log.Warn("read pending failed", zap.Int("worker", workerID), zap.Error(err))
			return
		}
		if len(messages) == 0 {
			return
		}
		m.handleMessages(workerID, messages)
	}
}

func (m *Manager) processMessages(workerID int, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamConsistency,
		queue.ConsumerGroupConsistency,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.log.Warn("read failed", zap.Int("worker", workerID), zap.Error(err))
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	m.handleMessages(workerID, messages)
}

// handleMessages acks every message even when repair fails; the record stays
// unresolved and the sweeper picks it up again.
func (m *Manager) handleMessages(workerID int, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			m.log.Debug("handler error",
				zap.Int("worker", workerID),
				zap.String("msg_id", msg.ID),
				zap.Error(err))
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamConsistency, queue.ConsumerGroupConsistency, msg.ID); err != nil {
			m.log.Warn("ack failed", zap.Int("worker", workerID), zap.String("msg_id", msg.ID), zap.Error(err))
		}
	}
}

func consumerNameForWorker(workerID int) string {
	return fmt.Sprintf("worker-%d", workerID)
}
