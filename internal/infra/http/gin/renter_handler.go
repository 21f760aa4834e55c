package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	rentersapp "rentbook/internal/app/handlers/renters"
)

// RenterHandler receives verification results from the identity provider.
type RenterHandler struct {
	Commands commands.Bus
}

type setKYCRequest struct {
	Status string `json:"status"`
}

func (h RenterHandler) SetKYC(c *gin.Context) {
	var req setKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := rentersapp.SetKYCCommand{RenterID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[rentersapp.SetKYCCommand, *rentersapp.SetKYCResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ RenterHTTP = RenterHandler{}
