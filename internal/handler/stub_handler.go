package handler

import (
	"fmt"
	"net/http"

	apperrors "travelwise/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StubHandler answers every route of a group whose real implementation lives in a
// separate service (itineraries, AI features) with 501. The envelope is written
// by middleware.ErrorHandler.
type StubHandler struct {
	feature string
}

func NewItineraryHandler() *StubHandler {
	return &StubHandler{feature: "itinerary"}
}

func NewAIFeaturesHandler() *StubHandler {
	return &StubHandler{feature: "ai features"}
}

func (h *StubHandler) Routes(rg *gin.RouterGroup) {
	rg.Any("/*path", h.NotImplemented)
}

func (h *StubHandler) NotImplemented(c *gin.Context) {
	c.Status(http.StatusNotImplemented)
	_ = c.Error(fmt.Errorf("%s service %w", h.feature, apperrors.ErrNotImplemented))
}
