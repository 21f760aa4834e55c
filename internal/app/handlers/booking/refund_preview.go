package booking

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
)

// RefundPreviewQuery asks what cancelling would refund. At defaults to now.
type RefundPreviewQuery struct {
	BookingID string
	UserID    string
	At        time.Time
}

func (RefundPreviewQuery) Key() string { return "booking.cancellation_preview" }

func (q RefundPreviewQuery) Validate() error {
	if strings.TrimSpace(q.BookingID) == "" {
		return ErrBookingRequired
	}
	return nil
}

type RefundPreviewHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
}

func (h *RefundPreviewHandler) Handle(ctx context.Context, q RefundPreviewQuery) (dto.Cancellation, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return dto.Cancellation{}, err
	}
	defer release()

	b, err := loadForParticipant(ctx, unit, q.BookingID, q.UserID)
	if err != nil {
		return dto.Cancellation{}, err
	}
	at := q.At
	if at.IsZero() {
		at = h.Clock.Now()
	}
	outcome, err := b.PreviewCancellation(at)
	if err != nil {
		return dto.Cancellation{}, err
	}
	return dto.MapCancellation(outcome), nil
}

var _ queries.Handler[RefundPreviewQuery, dto.Cancellation] = (*RefundPreviewHandler)(nil)
