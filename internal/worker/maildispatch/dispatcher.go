// Package maildispatch はメール送信を要求元から切り離す非同期ディスパッチャを提供する。
// パスワードリセット要求などのHTTPハンドリングは送信キューへの投入のみを行い、
// SMTPの一時的な障害がユーザー向けエラーや遅延として現れないようにする。
package maildispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/partyup/internal/mailer"
)

// sendTimeout は1通あたりのSMTP送信タイムアウト。
const sendTimeout = 30 * time.Second

// MetricsRecorder はディスパッチャが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordMailDispatched()
	RecordMailFailed()
	RecordMailDropped()
	SetMailQueueDepth(depth int)
}

// Dispatcher はメール送信キューとそれを消費するワーカーを保持する。
type Dispatcher struct {
	mailer  mailer.Mailer
	queue   chan mailer.Message
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewDispatcher はDispatcherを生成する。
// queueSizeはバッファサイズで、満杯時のEnqueueはメッセージを破棄する。
func NewDispatcher(m mailer.Mailer, queueSize int, logger *slog.Logger, metrics MetricsRecorder) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		mailer:  m,
		queue:   make(chan mailer.Message, queueSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Enqueue はメッセージを送信キューに投入する。ブロックしない。
// キューが満杯の場合はメッセージを破棄してfalseを返す。
// 投入の成否に関わらず呼び出し元の処理は成功として扱われる（fire-and-forget）。
func (d *Dispatcher) Enqueue(msg mailer.Message) bool {
	select {
	case d.queue <- msg:
		if d.metrics != nil {
			d.metrics.SetMailQueueDepth(len(d.queue))
		}
		return true
	default:
		d.logger.Warn("mail queue full, dropping message",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
		)
		if d.metrics != nil {
			d.metrics.RecordMailDropped()
		}
		return false
	}
}

// Start はキューを消費するワーカーループを実行する（ブロッキング）。
// ctxがキャンセルされると、その時点でキューに残っているメッセージを
// 送信しきってから返る。
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("mail dispatcher starting",
		slog.Int("queue_size", cap(d.queue)),
	)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info("mail dispatcher stopped")
			return
		case msg := <-d.queue:
			d.send(msg)
		}
	}
}

// drain は停止時にキューの残りを送信する。
func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.send(msg)
		default:
			return
		}
	}
}

// send は1通を送信し、結果をログとメトリクスに記録する。
// 失敗はここで握りつぶされ、呼び出し元には決して伝播しない。
func (d *Dispatcher) send(msg mailer.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Error("mail send failed",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
		if d.metrics != nil {
			d.metrics.RecordMailFailed()
		}
		return
	}

	if d.metrics != nil {
		d.metrics.RecordMailDispatched()
		d.metrics.SetMailQueueDepth(len(d.queue))
	}
}
