package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	salesdomain "github.com/kwachapos/fiscalgate/internal/sales/domain"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
)

func (s *Server) SubmitSale(c *gin.Context) {
	device := deviceID(c)
	if device == "" {
		AbortWithError(c, terminaldomain.ErrUnknownDevice)
		return
	}

	var req salesdomain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.DeviceID = device

	resp, err := s.salesSvc.SubmitSale(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
