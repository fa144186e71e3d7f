// Package workers contains background workers for the moderation domain
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

// NoticeCleaner removes deletion notices after a delay. Each removal runs on
// its own goroutine; pending removals are abandoned on Stop.
type NoticeCleaner struct {
	deleter deps.MessageDeleter
	metrics *metrics.Metrics
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	wg      conc.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// NewNoticeCleaner creates a cleaner; timeout bounds each delete call
func NewNoticeCleaner(deleter deps.MessageDeleter, m *metrics.Metrics, timeout time.Duration, logger zerolog.Logger) *NoticeCleaner {
	ctx, cancel := context.WithCancel(context.Background())

	return &NoticeCleaner{
		deleter: deleter,
		metrics: m,
		logger:  logger.With().Str("component", "notice_cleaner").Logger(),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule deletes the message once after has elapsed. It never blocks.
func (c *NoticeCleaner) Schedule(chatID int64, messageID int, after time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		c.logger.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("Cleaner stopped, notice left in place")
		return
	}

	c.wg.Go(func() {
		c.remove(chatID, messageID, after)
	})
}

func (c *NoticeCleaner) remove(chatID int64, messageID int, after time.Duration) {
	timer := time.NewTimer(after)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		return
	case <-timer.C:
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	if err := c.deleter.DeleteMessage(ctx, chatID, messageID); err != nil {
		c.metrics.RecordNoticeError()
		c.logger.Debug().
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Err(err).
			Msg("Failed to remove notice")
		return
	}

	c.logger.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("Notice removed")
}

// Stop cancels pending removals and waits for running ones to return
func (c *NoticeCleaner) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.logger.Info().Msg("Stopping notice cleaner...")
	c.cancel()
	c.wg.Wait()
	c.logger.Info().Msg("Notice cleaner stopped")
}

var _ deps.NoticeScheduler = (*NoticeCleaner)(nil)
