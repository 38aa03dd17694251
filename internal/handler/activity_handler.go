package handler

import (
	"net/http"
	"strconv"
	"time"

	"socialexplore/internal/middleware"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"
	"socialexplore/pkg/location"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	repo              *repository.ActivityRepository
	participationRepo *repository.ParticipationRepository
	discovery         *repository.DiscoveryRepository
}

func NewActivityHandler(
	repo *repository.ActivityRepository,
	participationRepo *repository.ParticipationRepository,
	discovery *repository.DiscoveryRepository,
) *ActivityHandler {
	return &ActivityHandler{repo: repo, participationRepo: participationRepo, discovery: discovery}
}

type CreateActivityRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	Category    string     `json:"category" binding:"required,max=64"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	MaxPeople   *int       `json:"max_people" binding:"omitempty,min=1"`
	Latitude    *float64   `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" binding:"required,min=-180,max=180"`
	IsPublic    *bool      `json:"is_public"`
}

func (h *ActivityHandler) Create(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &models.Activity{
		CreatorID:   middleware.GetUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime,
		MaxPeople:   req.MaxPeople,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		writeError(c, err, "create failed")
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "get failed")
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateActivityRequest carries the fields to change; omitted fields keep
// their value. Coordinates must be given together.
type UpdateActivityRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Category    *string    `json:"category" binding:"omitempty,min=1,max=64"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxPeople   *int       `json:"max_people" binding:"omitempty,min=1"`
	Latitude    *float64   `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" binding:"omitempty,min=-180,max=180"`
	IsPublic    *bool      `json:"is_public"`
}

// ownedActivity loads the :id activity and checks that the caller created it.
func (h *ActivityHandler) ownedActivity(c *gin.Context, action string) (*models.Activity, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, action+" failed")
		return nil, false
	}
	if a.CreatorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can " + action + " this activity"})
		return nil, false
	}
	return a, true
}

func (h *ActivityHandler) Update(c *gin.Context) {
	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be given together"})
		return
	}
	a, ok := h.ownedActivity(c, "update")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if req.StartTime != nil {
		a.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		a.EndTime = &end
	}
	if a.EndTime != nil && a.EndTime.Before(a.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time cannot be before start_time"})
		return
	}
	if req.MaxPeople != nil {
		accepted, err := h.participationRepo.CountAccepted(ctx, a.ID)
		if err != nil {
			writeError(c, err, "update failed")
			return
		}
		if int64(*req.MaxPeople) < accepted {
			c.JSON(http.StatusConflict, gin.H{"error": "max_people is below the accepted participants"})
			return
		}
		a.MaxPeople = req.MaxPeople
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Latitude != nil {
		a.Latitude, a.Longitude = *req.Latitude, *req.Longitude
	}
	if req.IsPublic != nil {
		a.IsPublic = *req.IsPublic
	}
	if err := h.repo.Update(ctx, a); err != nil {
		writeError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete removes the activity together with its participations, messages and
// the read marks that refer to them.
func (h *ActivityHandler) Delete(c *gin.Context) {
	a, ok := h.ownedActivity(c, "delete")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), a.ID); err != nil {
		writeError(c, err, "delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ActivityHandler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.repo.ListByCreator(c.Request.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": list})
}

const (
	defaultRadiusKm = 10
	maxRadiusKm     = 10000
)

// discoveryFilters parses category, start_after, latitude, longitude and
// radius_km query parameters. requireGeo makes the coordinates mandatory.
func discoveryFilters(c *gin.Context, requireGeo bool) (repository.DiscoveryFilters, bool) {
	limit, offset := pagination(c)
	f := repository.DiscoveryFilters{
		Category: c.Query("category"),
		RadiusKm: defaultRadiusKm,
		Limit:    limit,
		Offset:   offset,
	}
	if v := c.Query("start_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_after must be RFC3339"})
			return f, false
		}
		f.StartAfter = &t
	}

	latStr, lngStr := c.Query("latitude"), c.Query("longitude")
	if latStr == "" && lngStr == "" {
		if requireGeo {
			c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
			return f, false
		}
		return f, true
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil || !location.ValidCoordinate(lat, lng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		return f, false
	}
	f.Near = &repository.GeoPoint{Latitude: lat, Longitude: lng}
	if v := c.Query("radius_km"); v != "" {
		// NaN and non-positive radii fall back to the default.
		r, err := strconv.ParseFloat(v, 64)
		if err == nil && r > 0 && r <= maxRadiusKm {
			f.RadiusKm = r
		}
	}
	return f, true
}

// List returns public activities, filtered by distance when coordinates are given.
func (h *ActivityHandler) List(c *gin.Context) {
	f, ok := discoveryFilters(c, false)
	if !ok {
		return
	}
	h.discover(c, f)
}

func (h *ActivityHandler) Nearby(c *gin.Context) {
	f, ok := discoveryFilters(c, true)
	if !ok {
		return
	}
	h.discover(c, f)
}

func (h *ActivityHandler) discover(c *gin.Context, f repository.DiscoveryFilters) {
	results, err := h.discovery.Discover(c.Request.Context(), f)
	if err != nil {
		writeError(c, err, "discover failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": results})
}
