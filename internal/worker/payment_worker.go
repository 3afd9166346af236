package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/internal/broker"
	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
)

// PaymentWorker consumes the payment collaborator's events and settles the
// matching fines. Money movement itself happens on the other side.
type PaymentWorker struct {
	consumer *broker.Consumer
	fines    *service.FineService
	logger   *zap.Logger
}

func NewPaymentWorker(consumer *broker.Consumer, fines *service.FineService) *PaymentWorker {
	return &PaymentWorker{
		consumer: consumer,
		fines:    fines,
		logger:   utils.GetLogger(),
	}
}

// Start consumes payment events until the context is cancelled.
func (w *PaymentWorker) Start(ctx context.Context) error {
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

func (w *PaymentWorker) Stop() error {
	return w.consumer.Close()
}

func (w *PaymentWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	if base.EventType != models.EventTypeFinePaid {
		w.logger.Debug("ignoring payment event", zap.String("type", base.EventType))
		return nil
	}

	var event models.FinePaidEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("unmarshal FinePaid event: %w", err)
	}

	fineID, err := primitive.ObjectIDFromHex(event.FineID)
	if err != nil {
		w.logger.Warn("FinePaid event carries an invalid fine id",
			zap.String("fine_id", event.FineID))
		return nil // malformed fact, nothing to retry
	}

	return w.fines.MarkPaid(ctx, fineID, event.PaidAt)
}
