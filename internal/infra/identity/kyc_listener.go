package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/handlers/renters"
	"rentbook/internal/app/middleware"
)

// EventKYCUpdated is the CloudEvents type the identity provider emits when a
// renter's verification status changes.
const EventKYCUpdated = "identity.kyc.updated.v1"

// Inbox deduplicates redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

type kycData struct {
	RenterID string `json:"renter_id"`
	Status   string `json:"status"`
}

// KYCListener applies KYC status events to the renter directory through the
// command bus.
type KYCListener struct {
	Commands commands.Bus
	Inbox    Inbox
	Logger   *slog.Logger
}

func (l *KYCListener) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		logger.Warn("kyc event dropped: malformed envelope", "offset", msg.Offset, "error", err)
		return nil
	}
	if env.Type != EventKYCUpdated {
		return nil
	}
	if env.ID == "" {
		env.ID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}

	seen, err := l.Inbox.Seen(ctx, env.ID)
	if err != nil {
		return err
	}
	if seen {
		logger.Debug("kyc event already applied", "event_id", env.ID)
		return nil
	}

	var data kycData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		logger.Warn("kyc event dropped: malformed data", "event_id", env.ID, "error", err)
		return l.Inbox.Mark(ctx, env.ID)
	}
	if data.RenterID == "" {
		data.RenterID = env.Subject
	}

	cmd := renters.SetKYCCommand{RenterID: data.RenterID, Status: data.Status}
	if _, err := commands.Dispatch[renters.SetKYCCommand, *renters.SetKYCResult](ctx, l.Commands, cmd); err != nil {
		if !errors.Is(err, middleware.ErrInvalidInput) {
			return err
		}
		logger.Warn("kyc event dropped: rejected", "event_id", env.ID, "renter_id", data.RenterID, "error", err)
	} else {
		logger.Info("renter kyc updated", "event_id", env.ID, "renter_id", data.RenterID, "kyc_status", data.Status)
	}
	return l.Inbox.Mark(ctx, env.ID)
}
