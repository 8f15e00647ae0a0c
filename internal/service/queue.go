package service

import (
	"context"
	"sync"
	"sync/atomic"

	"iris-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// FrameQueue очередь кадров глубиной в один кадр: новый кадр вытесняет
// необработанный, накопления не происходит
type FrameQueue struct {
	analyzer *FrameAnalyzer
	logger   *logrus.Logger
	onResult func(*models.FrameResponse)

	mu      sync.Mutex
	pending *models.FrameRequest
	signal  chan struct{}

	dropped   atomic.Int64
	processed atomic.Int64
}

// NewFrameQueue создает очередь кадров. onResult может быть nil.
func NewFrameQueue(analyzer *FrameAnalyzer, logger *logrus.Logger, onResult func(*models.FrameResponse)) *FrameQueue {
	return &FrameQueue{
		analyzer: analyzer,
		logger:   logger,
		onResult: onResult,
		signal:   make(chan struct{}, 1),
	}
}

// Offer кладет кадр в очередь. Возвращает true, если вытеснен необработанный кадр.
func (q *FrameQueue) Offer(req models.FrameRequest) bool {
	q.mu.Lock()
	replaced := q.pending != nil
	q.pending = &req
	q.mu.Unlock()

	if replaced {
		q.dropped.Add(1)
	}

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return replaced
}

// Run обрабатывает кадры, пока не отменен ctx
func (q *FrameQueue) Run(ctx context.Context) error {
	q.logger.Info("Запущен обработчик очереди кадров")
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Обработчик очереди кадров остановлен")
			return ctx.Err()
		case <-q.signal:
		}

		req := q.take()
		if req == nil {
			continue
		}

		resp, err := q.analyzer.AnalyzeFrame(ctx, *req, SourceQueue)
		if err != nil {
			q.logger.Warnf("Кадр не обработан: %v", err)
			continue
		}
		q.processed.Add(1)
		if q.onResult != nil {
			q.onResult(resp)
		}
	}
}

// Dropped количество вытесненных кадров
func (q *FrameQueue) Dropped() int64 {
	return q.dropped.Load()
}

// Processed количество обработанных кадров
func (q *FrameQueue) Processed() int64 {
	return q.processed.Load()
}

func (q *FrameQueue) take() *models.FrameRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	req := q.pending
	q.pending = nil
	return req
}
