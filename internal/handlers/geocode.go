package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hextras/hextras-api/internal/errors"
	"github.com/hextras/hextras-api/internal/geo"
	"github.com/hextras/hextras-api/internal/middleware"
)

// GeocodeHandler proxies address search to the geocoding service.
type GeocodeHandler struct {
	client *geo.Client
}

// NewGeocodeHandler creates a new GeocodeHandler. client may be nil when
// geocoding is disabled.
func NewGeocodeHandler(client *geo.Client) *GeocodeHandler {
	return &GeocodeHandler{
		client: client,
	}
}

// Search returns candidate addresses for a free-text query
func (h *GeocodeHandler) Search(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if h.client == nil {
		apierrors.ServiceUnavailable(c, "Address search is not configured")
		return
	}

	places, err := h.client.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, geo.ErrQueryTooShort) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.ServiceUnavailable(c, "Address search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"places": places,
	})
}
