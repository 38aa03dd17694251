package handler

import (
	"context"
	"errors"
	"net/http"

	"socialexplore/internal/domain"
	"socialexplore/internal/middleware"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type ParticipationHandler struct {
	repo         *repository.ParticipationRepository
	activityRepo *repository.ActivityRepository
}

func NewParticipationHandler(repo *repository.ParticipationRepository, activityRepo *repository.ActivityRepository) *ParticipationHandler {
	return &ParticipationHandler{repo: repo, activityRepo: activityRepo}
}

type JoinRequest struct {
	ActivityID uint `json:"activity_id" binding:"required"`
}

func (h *ParticipationHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	a, err := h.activityRepo.GetByID(ctx, req.ActivityID)
	if err != nil {
		writeError(c, err, "join failed")
		return
	}
	if a.CreatorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot join your own activity"})
		return
	}
	_, err = h.repo.GetByActivityAndUser(ctx, a.ID, userID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "participation already requested"})
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		writeError(c, err, "join failed")
		return
	}
	full, err := h.isFull(ctx, a)
	if err != nil {
		writeError(c, err, "join failed")
		return
	}
	if full {
		c.JSON(http.StatusConflict, gin.H{"error": "activity is full"})
		return
	}
	p := &models.Participation{ActivityID: a.ID, UserID: userID, Status: domain.StatusPending}
	if err := h.repo.Create(ctx, p); err != nil {
		writeError(c, err, "join failed")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// isFull reports whether accepted participants already reach max_people.
func (h *ParticipationHandler) isFull(ctx context.Context, a *models.Activity) (bool, error) {
	if a.MaxPeople == nil {
		return false, nil
	}
	n, err := h.repo.CountAccepted(ctx, a.ID)
	if err != nil {
		return false, err
	}
	return n >= int64(*a.MaxPeople), nil
}

func (h *ParticipationHandler) ListForActivity(c *gin.Context) {
	activityID, ok := paramID(c, "activity_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a, err := h.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	if a.CreatorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the activity creator can list participations"})
		return
	}
	list, err := h.repo.ListByActivity(ctx, activityID)
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"participations": list})
}

func (h *ParticipationHandler) Mine(c *gin.Context) {
	list, err := h.repo.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"participations": list})
}

// Respond lets the activity creator accept or reject a join request.
func (h *ParticipationHandler) Respond(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	p, err := h.repo.GetByID(ctx, id)
	if err != nil {
		writeError(c, err, "update failed")
		return
	}
	a, err := h.activityRepo.GetByID(ctx, p.ActivityID)
	if err != nil {
		writeError(c, err, "update failed")
		return
	}
	if a.CreatorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the activity creator can respond"})
		return
	}
	if req.Status == domain.StatusAccepted && p.Status != domain.StatusAccepted {
		full, err := h.isFull(ctx, a)
		if err != nil {
			writeError(c, err, "update failed")
			return
		}
		if full {
			c.JSON(http.StatusConflict, gin.H{"error": "activity is full"})
			return
		}
	}
	if err := h.repo.UpdateStatus(ctx, p.ID, req.Status); err != nil {
		writeError(c, err, "update failed")
		return
	}
	p.Status = req.Status
	c.JSON(http.StatusOK, p)
}

// Leave removes a participation; allowed for the participant and the activity creator.
func (h *ParticipationHandler) Leave(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.repo.GetByID(ctx, id)
	if err != nil {
		writeError(c, err, "delete failed")
		return
	}
	if p.UserID != userID {
		a, err := h.activityRepo.GetByID(ctx, p.ActivityID)
		if err != nil {
			writeError(c, err, "delete failed")
			return
		}
		if a.CreatorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}
	if err := h.repo.Delete(ctx, p.ID); err != nil {
		writeError(c, err, "delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
