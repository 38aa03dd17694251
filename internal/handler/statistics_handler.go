package handler

import (
	"net/http"
	"time"

	"socialexplore/internal/middleware"
	"socialexplore/internal/repository"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	repo *repository.StatisticsRepository
	now  func() time.Time
}

func NewStatisticsHandler(repo *repository.StatisticsRepository) *StatisticsHandler {
	return &StatisticsHandler{repo: repo, now: time.Now}
}

// General returns platform totals, activities per category and the monthly
// series of the last six months.
func (h *StatisticsHandler) General(c *gin.Context) {
	s, err := h.repo.General(c.Request.Context(), h.now())
	if err != nil {
		writeError(c, err, "statistics failed")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StatisticsHandler) Personal(c *gin.Context) {
	s, err := h.repo.Personal(c.Request.Context(), middleware.GetUserID(c), h.now())
	if err != nil {
		writeError(c, err, "statistics failed")
		return
	}
	c.JSON(http.StatusOK, s)
}
