package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetConfig(c *gin.Context) {
	respondOK(c, "ok", s.cfg.Get())
}

type updateConfigRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := s.cfg.Update(req.Key, req.Value); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.Key == "horizontal_mask_width" || req.Key == "vertical_mask_height" {
		updated := s.cfg.Get()
		s.mu.Lock()
		s.maskW, s.maskH = updated.HorizontalMaskWidth, updated.VerticalMaskHeight
		if s.engine != nil {
			s.engine.SetMaskSize(s.maskW, s.maskH)
		}
		s.mu.Unlock()
	}

	respondOK(c, "ok", s.cfg.Get())
}
