package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "referral-giveaway-bot/internal/common/errors"
	domaindrawing "referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/domain/season"
	mw "referral-giveaway-bot/internal/http/middleware"
	"referral-giveaway-bot/internal/service/drawing"
	"referral-giveaway-bot/internal/service/tickets"
)

// AdminEngine is the administrative surface of the ticket engine.
type AdminEngine interface {
	SetActive(ctx context.Context, active bool) error
	IsActive(ctx context.Context) (bool, error)
	ResetSeason(ctx context.Context) (*season.Season, error)
	Stats(ctx context.Context) (*tickets.AdminStats, error)
	InspectUser(ctx context.Context, userID int64) (*tickets.UserReport, error)
}

// Drawer runs drawings and reads their history.
type Drawer interface {
	RunDrawing(ctx context.Context, k int, prize string) (*drawing.Result, error)
	History(ctx context.Context, limit int) ([]domaindrawing.Winner, error)
}

type AdminHandlers struct {
	engine         AdminEngine
	drawer         Drawer
	defaultWinners int
}

func NewAdminHandlers(engine AdminEngine, drawer Drawer, defaultWinners int) *AdminHandlers {
	if defaultWinners < 1 {
		defaultWinners = 1
	}
	return &AdminHandlers{engine: engine, drawer: drawer, defaultWinners: defaultWinners}
}

// Register registers routes on an admin-only group.
func (h *AdminHandlers) Register(r gin.IRouter) {
	r.GET("/stats", h.stats)
	r.GET("/users/:id", h.inspectUser)
	r.GET("/active", h.getActive)
	r.PUT("/active", h.setActive)
	r.POST("/drawings", h.runDrawing)
	r.POST("/season/reset", h.resetSeason)
}

// RegisterPublic registers cacheable read-only routes.
func (h *AdminHandlers) RegisterPublic(r gin.IRouter) {
	r.GET("/winners", h.winners)
}

type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type ActiveResponse struct {
	Active bool `json:"active"`
}

type DrawingRequest struct {
	Winners int    `json:"winners" example:"3"`
	Prize   string `json:"prize" example:"Telegram Premium"`
}

// @Summary Admin stats
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} tickets.AdminStats
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandlers) stats(c *gin.Context) {
	st, err := h.engine.Stats(c.Request.Context())
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Inspect a user
// @Description Stored summary of one user plus the referral edges recorded for them
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Param id path int true "Telegram user id"
// @Success 200 {object} tickets.UserReport
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *AdminHandlers) inspectUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		mw.WriteError(c, apperrors.NewValidationError("id", "must be a positive integer"))
		return
	}
	rep, err := h.engine.InspectUser(c.Request.Context(), id)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary Get giveaway switch
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} ActiveResponse
// @Router /admin/active [get]
func (h *AdminHandlers) getActive(c *gin.Context) {
	on, err := h.engine.IsActive(c.Request.Context())
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActiveResponse{Active: on})
}

// @Summary Pause or resume the giveaway
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body ActiveRequest true "Switch state"
// @Success 200 {object} ActiveResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/active [put]
func (h *AdminHandlers) setActive(c *gin.Context) {
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		mw.WriteError(c, apperrors.NewValidationError("active", "boolean is required"))
		return
	}
	if err := h.engine.SetActive(c.Request.Context(), *req.Active); err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActiveResponse{Active: *req.Active})
}

// @Summary Run a drawing
// @Description Picks distinct winners weighted by tickets among eligible users
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body DrawingRequest false "Winner count and prize"
// @Success 200 {object} drawing.Result
// @Failure 409 {object} middleware.ErrorResponse "Not enough participants"
// @Router /admin/drawings [post]
func (h *AdminHandlers) runDrawing(c *gin.Context) {
	var req DrawingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			mw.WriteError(c, apperrors.NewValidationError("body", "invalid json"))
			return
		}
	}
	if req.Winners == 0 {
		req.Winners = h.defaultWinners
	}
	res, err := h.drawer.RunDrawing(c.Request.Context(), req.Winners, req.Prize)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Reset the season
// @Description Ends the current season now and zeroes season-scoped counters of every user
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} season.Season
// @Router /admin/season/reset [post]
func (h *AdminHandlers) resetSeason(c *gin.Context) {
	s, err := h.engine.ResetSeason(c.Request.Context())
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary Winner history
// @Tags drawings
// @Produce json
// @Param limit query int false "Max rows (default 50, max 500)"
// @Success 200 {array} drawing.Winner
// @Router /winners [get]
func (h *AdminHandlers) winners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	ws, err := h.drawer.History(c.Request.Context(), limit)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	if ws == nil {
		ws = []domaindrawing.Winner{}
	}
	c.JSON(http.StatusOK, ws)
}
