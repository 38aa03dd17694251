package handler

import (
	"errors"
	"net/http"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/middleware"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	repo     *repository.FriendRequestRepository
	userRepo *repository.UserRepository
	now      func() time.Time
}

func NewFriendHandler(repo *repository.FriendRequestRepository, userRepo *repository.UserRepository) *FriendHandler {
	return &FriendHandler{repo: repo, userRepo: userRepo, now: time.Now}
}

type SendFriendRequest struct {
	ToUserID uint `json:"to_user_id" binding:"required"`
}

type RespondRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

type friendRequestItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

func toFriendRequestItems(rows []repository.FriendRequestRow) []friendRequestItem {
	out := make([]friendRequestItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, friendRequestItem{ID: r.ID, UserID: r.UserID, UserName: r.UserName, CreatedAt: r.OccurredAt})
	}
	return out
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req SendFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ToUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a friend request to yourself"})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.userRepo.GetByID(ctx, req.ToUserID); err != nil {
		writeError(c, err, "send failed")
		return
	}
	_, err := h.repo.FindBetween(ctx, userID, req.ToUserID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a friend request between you already exists"})
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		writeError(c, err, "send failed")
		return
	}
	fr := &models.FriendRequest{FromUserID: userID, ToUserID: req.ToUserID, Status: domain.StatusPending}
	if err := h.repo.Create(ctx, fr); err != nil {
		writeError(c, err, "send failed")
		return
	}
	c.JSON(http.StatusCreated, fr)
}

func (h *FriendHandler) Received(c *gin.Context) {
	rows, err := h.repo.ListPendingIncoming(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": toFriendRequestItems(rows)})
}

func (h *FriendHandler) Sent(c *gin.Context) {
	rows, err := h.repo.ListPendingOutgoing(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": toFriendRequestItems(rows)})
}

// Respond accepts or rejects a pending request addressed to the caller.
func (h *FriendHandler) Respond(c *gin.Context) {
	userID := middleware.GetUserID(c)
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
	fr, err := h.repo.GetByID(ctx, id)
	if err != nil {
		writeError(c, err, "update failed")
		return
	}
	if fr.ToUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the recipient can respond to this request"})
		return
	}
	if fr.Status != domain.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "request already " + fr.Status})
		return
	}
	if err := h.repo.Respond(ctx, fr, req.Status, h.now().UTC()); err != nil {
		writeError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, fr)
}

func (h *FriendHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := h.repo.FriendIDs(ctx, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	friends, err := h.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	if friends == nil {
		friends = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Remove deletes the friendship and the read history attached to it.
func (h *FriendHandler) Remove(c *gin.Context) {
	userID := middleware.GetUserID(c)
	friendID, ok := paramID(c, "friend_id")
	if !ok {
		return
	}
	if err := h.repo.DeleteFriendship(c.Request.Context(), userID, friendID); err != nil {
		writeError(c, err, "remove failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Withdraw deletes a request that is not an accepted friendship. The sender
// may withdraw a pending request; either side may clear a rejected one so a
// new request can be sent. Accepted requests go through Remove.
func (h *FriendHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	fr, err := h.repo.GetByID(ctx, id)
	if err != nil {
		writeError(c, err, "withdraw failed")
		return
	}
	switch {
	case fr.Status == domain.StatusAccepted:
		c.JSON(http.StatusConflict, gin.H{"error": "request already accepted, remove the friend instead"})
		return
	case fr.Status == domain.StatusPending && fr.FromUserID != userID:
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can withdraw a pending request"})
		return
	case fr.FromUserID != userID && fr.ToUserID != userID:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.repo.Delete(ctx, fr.ID); err != nil {
		writeError(c, err, "withdraw failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
