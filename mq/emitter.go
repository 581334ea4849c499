package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SalesChannel carries one message per completed sale.
const SalesChannel = "sales-events"

type SaleEvent struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	StoreID       string    `json:"storeId"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewSaleEvent(s models.Sale) SaleEvent {
	return SaleEvent{
		InvoiceNumber: s.InvoiceNumber,
		StoreID:       s.StoreID,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		CreatedAt:     s.CreatedAt,
	}
}

// Emitter publishes sale events on Redis pub/sub.
type Emitter struct {
	Conn   *redis.Client
	Logger *zap.Logger
}

func (e *Emitter) SaleCompleted(ctx context.Context, sale models.Sale) error {
	data, err := json.Marshal(NewSaleEvent(sale))
	if err != nil {
		return fmt.Errorf("encode sale event: %w", err)
	}
	if err := e.Conn.Publish(ctx, SalesChannel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", SalesChannel, err)
	}
	e.Logger.Debug("sale event published",
		zap.String("invoice", sale.InvoiceNumber),
		zap.String("store", sale.StoreID))
	return nil
}

// Invalidator drops cached reports for a store.
type Invalidator interface {
	InvalidateStore(ctx context.Context, storeID string) (int, error)
}

// HandleSaleEvent decodes one payload and invalidates the store's reports.
func HandleSaleEvent(ctx context.Context, payload string, cache Invalidator, logger *zap.Logger) error {
	var event SaleEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("decode sale event: %w", err)
	}
	if event.StoreID == "" {
		return fmt.Errorf("sale event %s without store", event.InvoiceNumber)
	}

	n, err := cache.InvalidateStore(ctx, event.StoreID)
	if err != nil {
		return err
	}
	logger.Debug("report cache invalidated",
		zap.String("store", event.StoreID),
		zap.String("invoice", event.InvoiceNumber),
		zap.Int("keys", n))
	return nil
}

// StartSalesWorker consumes sale events until ctx is done.
func StartSalesWorker(ctx context.Context, conn *redis.Client, cache Invalidator, logger *zap.Logger) {
	sub := conn.Subscribe(ctx, SalesChannel)
	defer sub.Close()
	ch := sub.Channel()

	logger.Info("sales worker listening", zap.String("channel", SalesChannel))
	for {
		select {
		case <-ctx.Done():
			logger.Info("sales worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := HandleSaleEvent(ctx, msg.Payload, cache, logger); err != nil {
				logger.Warn("sale event dropped", zap.Error(err))
			}
		}
	}
}
