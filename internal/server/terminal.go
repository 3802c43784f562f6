package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
)

type terminalStatusResponse struct {
	TerminalID     string `json:"terminalId"`
	IsBlocked      bool   `json:"isBlocked"`
	BlockingReason string `json:"blockingReason,omitempty"`
	OfflineBacklog int64  `json:"offlineBacklog"`
}

type pollUnblockResponse struct {
	Unblocked bool `json:"unblocked"`
}

func (s *Server) resolveTerminal(c *gin.Context) (*terminaldomain.Terminal, bool) {
	device := deviceID(c)
	if device == "" {
		AbortWithError(c, terminaldomain.ErrUnknownDevice)
		return nil, false
	}
	terminal, err := s.terminals.FindByDeviceID(c.Request.Context(), device)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return terminal, true
}

func (s *Server) TerminalStatus(c *gin.Context) {
	terminal, ok := s.resolveTerminal(c)
	if !ok {
		return
	}

	backlog, err := s.offline.CountUnsubmitted(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := terminal.Status()
	c.JSON(http.StatusOK, terminalStatusResponse{
		TerminalID:     terminal.TerminalID,
		IsBlocked:      status.IsBlocked(),
		BlockingReason: status.Reason(),
		OfflineBacklog: backlog,
	})
}

func (s *Server) PollUnblock(c *gin.Context) {
	terminal, ok := s.resolveTerminal(c)
	if !ok {
		return
	}

	unblocked, err := s.terminalSvc.PollUnblock(c.Request.Context(), terminal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pollUnblockResponse{Unblocked: unblocked})
}
