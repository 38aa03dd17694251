package handler

import (
	"context"
	"net/http"

	"socialexplore/internal/middleware"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	repo              *repository.MessageRepository
	activityRepo      *repository.ActivityRepository
	participationRepo *repository.ParticipationRepository
}

func NewMessageHandler(repo *repository.MessageRepository, activityRepo *repository.ActivityRepository, participationRepo *repository.ParticipationRepository) *MessageHandler {
	return &MessageHandler{repo: repo, activityRepo: activityRepo, participationRepo: participationRepo}
}

type PostMessageRequest struct {
	ActivityID uint   `json:"activity_id" binding:"required"`
	Text       string `json:"text" binding:"required,max=4000"`
}

// canChat reports whether userID created the activity or is an accepted participant.
func (h *MessageHandler) canChat(ctx context.Context, activityID, userID uint) (bool, error) {
	a, err := h.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return false, err
	}
	if a.CreatorID == userID {
		return true, nil
	}
	return h.participationRepo.IsAcceptedMember(ctx, activityID, userID)
}

func (h *MessageHandler) Post(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	ok, err := h.canChat(ctx, req.ActivityID, userID)
	if err != nil {
		writeError(c, err, "send failed")
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or accepted participants can post"})
		return
	}
	m := &models.Message{ActivityID: req.ActivityID, SenderID: userID, Text: req.Text}
	if err := h.repo.Create(ctx, m); err != nil {
		writeError(c, err, "send failed")
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MessageHandler) List(c *gin.Context) {
	activityID, ok := paramID(c, "activity_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	allowed, err := h.canChat(ctx, activityID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or accepted participants can read messages"})
		return
	}
	limit, offset := pagination(c)
	list, err := h.repo.ListByActivity(ctx, activityID, limit, offset)
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}
