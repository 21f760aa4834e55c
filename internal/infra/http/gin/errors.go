package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "rentbook/internal/app/handlers/booking"
	listingsapp "rentbook/internal/app/handlers/listings"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/uow"
	"rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/money"
)

var (
	notFound = []error{
		domainlistings.ErrListingNotFound,
		domainbooking.ErrBookingNotFound,
	}
	forbidden = []error{
		domainbooking.ErrNotParticipant,
		listingsapp.ErrNotOwner,
	}
	conflict = []error{
		bookingapp.ErrPriceChanged,
		domainbooking.ErrInvalidState,
		domainlistings.ErrInvalidState,
		uow.ErrConcurrentUpdate,
	}
	// Domain input errors raised inside handlers rather than by Validate.
	invalid = []error{
		middleware.ErrInvalidInput,
		domainlistings.ErrTitleRequired,
		domainlistings.ErrHostRequired,
		domainlistings.ErrQuantity,
		domainlistings.ErrDailyRate,
		domainlistings.ErrPackageRate,
		domainlistings.ErrCurrency,
		domainlistings.ErrWeekendFactor,
		domainlistings.ErrDepositType,
		domainlistings.ErrDepositValue,
		domainlistings.ErrDeliveryFeeType,
		domainlistings.ErrDeliveryFee,
		domainlistings.ErrDeliveryChoice,
		availability.ErrStayRange,
		availability.ErrNegativeDays,
		availability.ErrNoBookableWeekday,
		availability.ErrUnknownWeekday,
		availability.ErrBlackoutRule,
		availability.ErrBlackoutKind,
		availability.ErrBlackoutRange,
		cancellation.ErrUnknownPolicy,
		eligibility.ErrUnknownKYCStatus,
		money.ErrInvalidCurrency,
		money.ErrNegativeAmount,
	}
)

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case domainpricing.IsRejection(err):
		return http.StatusUnprocessableEntity
	case matches(err, notFound):
		return http.StatusNotFound
	case matches(err, forbidden):
		return http.StatusForbidden
	case matches(err, conflict):
		return http.StatusConflict
	case matches(err, invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err is caused by the request rather than by
// the service. Bus logging uses it to keep rejections out of error logs.
func IsClientError(err error) bool {
	return statusFor(err) < http.StatusInternalServerError
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadRequest:
		return "invalid_input"
	default:
		return "internal"
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	var rej *domainpricing.Rejection
	if errors.As(err, &rej) {
		body := gin.H{"error": rej.Error(), "code": string(rej.Code), "reason": rej.Reason()}
		switch rej.Code {
		case domainpricing.CodeQuantityExceeded, domainpricing.CodeInvalidQuantity:
			body["requested"] = rej.Requested
			body["available"] = rej.Available
		case domainpricing.CodeDeliveryOutOfRange:
			body["distance_km"] = rej.DistanceKm
			body["radius_km"] = rej.RadiusKm
		case domainpricing.CodeEligibilityBlocked:
			if rej.KYC != "" {
				body["kyc_status"] = string(rej.KYC)
			}
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "code": codeFor(status)})
}
