package handler

import (
	"net/http"
	"strings"

	"socialexplore/internal/middleware"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo          *repository.UserRepository
	participationRepo *repository.ParticipationRepository
	friendRepo        *repository.FriendRequestRepository
}

func NewMeHandler(
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	friendRepo *repository.FriendRequestRepository,
) *MeHandler {
	return &MeHandler{
		userRepo:          userRepo,
		participationRepo: participationRepo,
		friendRepo:        friendRepo,
	}
}

// GetProfile returns the current user with participation and friend counts.
func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		writeError(c, err, "profile lookup failed")
		return
	}
	parts, err := h.participationRepo.ListByUser(ctx, userID)
	if err != nil {
		writeError(c, err, "profile lookup failed")
		return
	}
	friends, err := h.friendRepo.FriendIDs(ctx, userID)
	if err != nil {
		writeError(c, err, "profile lookup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":                 u,
		"participations_count": len(parts),
		"friends_count":        len(friends),
	})
}

// UpdateProfileRequest changes the given fields only. The home location is
// set with both coordinates, or cleared with clear_home_location.
type UpdateProfileRequest struct {
	Name              *string   `json:"name" binding:"omitempty,min=1,max=128"`
	Bio               *string   `json:"bio" binding:"omitempty,max=2000"`
	Interests         *[]string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=64"`
	HomeLatitude      *float64  `json:"home_latitude" binding:"omitempty,min=-90,max=90"`
	HomeLongitude     *float64  `json:"home_longitude" binding:"omitempty,min=-180,max=180"`
	ClearHomeLocation bool      `json:"clear_home_location"`
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.HomeLatitude == nil) != (req.HomeLongitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "home_latitude and home_longitude must be given together"})
		return
	}
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "update failed")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be blank"})
			return
		}
		u.Name = name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Interests != nil {
		u.Interests = cleanInterests(*req.Interests)
	}
	switch {
	case req.ClearHomeLocation:
		u.HomeLatitude, u.HomeLongitude = nil, nil
	case req.HomeLatitude != nil:
		u.HomeLatitude, u.HomeLongitude = req.HomeLatitude, req.HomeLongitude
	}
	if err := h.userRepo.Update(ctx, u); err != nil {
		writeError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, u)
}

// GetUser returns another user's public profile.
func (h *MeHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "lookup failed")
		return
	}
	c.JSON(http.StatusOK, u)
}

// cleanInterests trims entries and drops blanks and case-insensitive duplicates.
func cleanInterests(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
