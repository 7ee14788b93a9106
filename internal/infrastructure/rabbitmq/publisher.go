package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/config"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

// Channel は Publisher が使う amqp.Channel の操作
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は予約イベントを永続キューに送る。通知サービス（WhatsApp等）が購読する
type Publisher struct {
	conn          *amqp.Connection
	mu            sync.Mutex
	ch            Channel
	stateQueue    string
	reminderQueue string
}

// NewPublisher はブローカーに接続し、送信先キューを宣言する
func NewPublisher(cfg *config.RabbitMQConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	p, err := newPublisher(ch, cfg.StateQueue, cfg.ReminderQueue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch Channel, stateQueue, reminderQueue string) (*Publisher, error) {
	for _, name := range []string{stateQueue, reminderQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("キュー %s の宣言に失敗: %w", name, err)
		}
	}
	return &Publisher{ch: ch, stateQueue: stateQueue, reminderQueue: reminderQueue}, nil
}

// PublishStateChanged は状態変更イベントを送る
func (p *Publisher) PublishStateChanged(ctx context.Context, ev reservation.StateChangedEvent) error {
	return p.publish(ctx, p.stateQueue, ev.EventID, ev)
}

// PublishPaymentReminder は入金催促イベントを送る
func (p *Publisher) PublishPaymentReminder(ctx context.Context, ev reservation.PaymentReminderEvent) error {
	return p.publish(ctx, p.reminderQueue, ev.EventID, ev)
}

func (p *Publisher) publish(ctx context.Context, queue, messageID string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp.Channel は並行送信に対応していない
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("イベント送信に失敗: %w", err)
	}
	logger.Debug("イベントを送信しました", zap.String("queue", queue), zap.String("message_id", messageID))
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		logger.Warn("チャネルのクローズに失敗", zap.Error(err))
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
