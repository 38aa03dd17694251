package handler

import (
	"net/http"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/middleware"
	"socialexplore/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
	now func() time.Time
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc, now: time.Now}
}

// NotificationItem is the wire form of a feed entry. ID is the source row id
// to pass back to MarkRead together with Type.
type NotificationItem struct {
	ID            uint      `json:"id"`
	Type          string    `json:"type"`
	ActivityID    *uint     `json:"activity_id"`
	ActivityTitle *string   `json:"activity_title"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

func toItem(c service.Candidate) NotificationItem {
	item := NotificationItem{
		ID:        c.SourceID,
		Type:      c.Kind.String(),
		UserID:    c.ActorID,
		UserName:  c.ActorName,
		Message:   c.Message,
		CreatedAt: c.OccurredAt,
	}
	if c.Activity != nil {
		id, title := c.Activity.ID, c.Activity.Title
		item.ActivityID = &id
		item.ActivityTitle = &title
	}
	return item
}

func (h *NotificationHandler) Count(c *gin.Context) {
	userID := middleware.GetUserID(c)
	n, err := h.svc.Count(c.Request.Context(), userID, h.now())
	if err != nil {
		writeError(c, err, "count failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	feed, err := h.svc.Feed(c.Request.Context(), userID, h.now())
	if err != nil {
		writeError(c, err, "list failed")
		return
	}
	items := make([]NotificationItem, 0, len(feed))
	for _, n := range feed {
		items = append(items, toItem(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	kind, err := domain.ParseNotificationKind(c.Param("type"))
	if err != nil {
		writeError(c, err, "update failed")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), userID, kind, id, h.now()); err != nil {
		writeError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	kind, err := domain.ParseNotificationKind(c.Param("type"))
	if err != nil {
		writeError(c, err, "lookup failed")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	read, err := h.svc.IsRead(c.Request.Context(), userID, kind, id)
	if err != nil {
		writeError(c, err, "lookup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": kind, "id": id, "read": read})
}
