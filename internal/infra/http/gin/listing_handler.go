package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	availabilityapp "rentbook/internal/app/handlers/availability"
	bookingapp "rentbook/internal/app/handlers/booking"
	listingsapp "rentbook/internal/app/handlers/listings"
	"rentbook/internal/app/queries"
)

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type upsertListingRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	dto.ListingInput
}

func (h ListingHandler) Create(c *gin.Context) {
	h.upsert(c, "", http.StatusCreated)
}

func (h ListingHandler) Update(c *gin.Context) {
	h.upsert(c, c.Param("id"), http.StatusOK)
}

func (h ListingHandler) upsert(c *gin.Context, id string, status int) {
	host, ok := requireUser(c)
	if !ok {
		return
	}
	var req upsertListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if id == "" {
		id = req.ID
	}
	cmd := listingsapp.UpsertListingCommand{
		ListingID:       id,
		HostID:          host,
		Input:           req.ListingInput,
		Status:          req.Status,
		IdempotencyKeyV: c.GetHeader(HeaderIdempotencyKey),
	}
	result, err := commands.Dispatch[listingsapp.UpsertListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	q := listingsapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Calendar(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		badRequest(c, err)
		return
	}
	q := availabilityapp.GetCalendarQuery{ListingID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteRequest struct {
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Quantity    *int             `json:"quantity"`
	Delivery    string           `json:"delivery"`
	Destination *dto.Coordinates `json:"destination"`
}

func (r quoteRequest) params(listingID, renterID string) (bookingapp.RequestParams, error) {
	start, err := parseDate(r.Start)
	if err != nil {
		return bookingapp.RequestParams{}, err
	}
	end, err := parseDate(r.End)
	if err != nil {
		return bookingapp.RequestParams{}, err
	}
	// An omitted quantity books one unit; an explicit value is passed on
	// unchanged so the engine rejects anything below one.
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return bookingapp.RequestParams{
		ListingID:   listingID,
		RenterID:    renterID,
		Start:       start,
		End:         end,
		Quantity:    quantity,
		Delivery:    r.Delivery,
		Destination: r.Destination,
	}, nil
}

// Quote prices a prospective booking. Anonymous callers are priced as
// renters without identity verification.
func (h ListingHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	params, err := req.params(c.Param("id"), userID(c))
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := queries.Ask[bookingapp.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, bookingapp.QuoteQuery{RequestParams: params})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}
