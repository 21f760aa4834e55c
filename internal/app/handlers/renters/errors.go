package renters

import "errors"

var ErrRenterRequired = errors.New("renters: renter id required")
