package handler

import (
	"net/http"
	"strings"

	"socialexplore/internal/middleware"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	discovery *repository.DiscoveryRepository
}

func NewSearchHandler(discovery *repository.DiscoveryRepository) *SearchHandler {
	return &SearchHandler{discovery: discovery}
}

// NearbyUsers finds users whose home location is within radius_km of
// latitude/longitude. interests is an optional comma-separated list.
func (h *SearchHandler) NearbyUsers(c *gin.Context) {
	f, ok := discoveryFilters(c, true)
	if !ok {
		return
	}
	var interests []string
	if v := c.Query("interests"); v != "" {
		interests = strings.Split(v, ",")
	}
	users, err := h.discovery.NearbyUsers(c.Request.Context(), repository.UserSearch{
		Near:      *f.Near,
		RadiusKm:  f.RadiusKm,
		Interests: interests,
		ExcludeID: middleware.GetUserID(c),
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
	if err != nil {
		writeError(c, err, "search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
