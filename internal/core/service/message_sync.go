package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/ports"
	"github.com/tavernchat/dicechat/internal/metrics"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultFetchLimit   = 50
)

// MessageSync polls the message store on a fixed interval. Ticks never
// overlap: the next fetch is scheduled only after the previous one finished,
// so a slow response throttles the loop instead of queueing requests. A
// failed poll is logged and treated as zero new messages.
type MessageSync struct {
	chat     ports.ChatAPI
	sched    ports.Scheduler
	interval time.Duration
	limit    int
	logger   zerolog.Logger

	mu         sync.Mutex
	polling    bool
	cancel     func()
	roomID     string
	onMessages func([]domain.ChatMessage)
}

func NewMessageSync(chat ports.ChatAPI, sched ports.Scheduler, interval time.Duration, logger zerolog.Logger) *MessageSync {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &MessageSync{
		chat:     chat,
		sched:    sched,
		interval: interval,
		limit:    defaultFetchLimit,
		logger:   logger,
	}
}

// Start begins polling the room, fetching immediately and then on the fixed
// interval. Starting while already polling is a no-op.
func (s *MessageSync) Start(roomID string, onMessages func([]domain.ChatMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.polling {
		return
	}
	s.polling = true
	s.roomID = roomID
	s.onMessages = onMessages
	s.cancel = s.sched.Schedule(0, s.tick)
}

// Stop halts polling and cancels the pending tick. A tick already running
// may still deliver one final batch; callers must tolerate that straggler.
func (s *MessageSync) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polling = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// FetchMessages performs a single fetch. Failures are logged and swallowed
// here so a transient blip never crashes a caller; a failed fetch reads as
// zero messages. The polling loop runs every tick through this path.
func (s *MessageSync) FetchMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, int) {
	msgs, count, err := s.chat.FetchMessages(ctx, roomID, limit, offset)
	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("message fetch failed")
		return nil, 0
	}
	metrics.PollsTotal.WithLabelValues("success").Inc()
	metrics.MessagesFetchedTotal.Add(float64(len(msgs)))
	return msgs, count
}

func (s *MessageSync) tick() {
	s.mu.Lock()
	if !s.polling {
		s.mu.Unlock()
		return
	}
	roomID, deliver := s.roomID, s.onMessages
	s.mu.Unlock()

	msgs, _ := s.FetchMessages(context.Background(), roomID, s.limit, 0)
	if deliver != nil && len(msgs) > 0 {
		deliver(msgs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.polling {
		s.cancel = s.sched.Schedule(s.interval, s.tick)
	}
}
