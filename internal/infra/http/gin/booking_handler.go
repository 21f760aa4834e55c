package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	bookingapp "rentbook/internal/app/handlers/booking"
	"rentbook/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	// NewID generates booking ids; defaults to uuid.NewString.
	NewID func() string
}

type createBookingRequest struct {
	ListingID string `json:"listing_id"`
	quoteRequest
	ExpectedTotal *int64 `json:"expected_total"`
}

func (h BookingHandler) Create(c *gin.Context) {
	renter, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	params, err := req.params(req.ListingID, renter)
	if err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.SubmitBookingCommand{
		RequestParams:   params,
		BookingID:       h.newID(),
		ExpectedTotal:   req.ExpectedTotal,
		IdempotencyKeyV: c.GetHeader(HeaderIdempotencyKey),
	}
	result, err := commands.Dispatch[bookingapp.SubmitBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id"), UserID: user}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) RefundPreview(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	at, err := parseDate(c.Query("at"))
	if err != nil {
		badRequest(c, err)
		return
	}
	q := bookingapp.RefundPreviewQuery{BookingID: c.Param("id"), UserID: user, At: at}
	result, err := queries.Ask[bookingapp.RefundPreviewQuery, dto.Cancellation](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// bindReason tolerates an empty body.
func bindReason(c *gin.Context) (string, bool) {
	var req reasonRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", false
	}
	return req.Reason, true
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), UserID: user, Reason: reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Confirm(c *gin.Context) { h.decide(c, bookingapp.DecisionConfirm) }

func (h BookingHandler) Decline(c *gin.Context) { h.decide(c, bookingapp.DecisionDecline) }

func (h BookingHandler) Complete(c *gin.Context) { h.decide(c, bookingapp.DecisionComplete) }

func (h BookingHandler) ReleaseDeposit(c *gin.Context) {
	h.decide(c, bookingapp.DecisionReleaseDeposit)
}

func (h BookingHandler) decide(c *gin.Context, decision bookingapp.Decision) {
	host, ok := requireUser(c)
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	cmd := bookingapp.HostDecisionCommand{BookingID: c.Param("id"), HostID: host, Decision: decision, Reason: reason}
	result, err := commands.Dispatch[bookingapp.HostDecisionCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	renter, ok := requireUser(c)
	if !ok {
		return
	}
	q := bookingapp.ListRenterBookingsQuery{RenterID: renter}
	result, err := queries.Ask[bookingapp.ListRenterBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	if result == nil {
		result = []dto.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h BookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
