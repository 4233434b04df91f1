package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/domain/user"
	mw "referral-giveaway-bot/internal/http/middleware"
	"referral-giveaway-bot/internal/service/tickets"
)

// TicketEngine is the part of the ticket engine the HTTP API needs.
type TicketEngine interface {
	RegisterOrTouch(ctx context.Context, userID int64, displayName string) (*user.User, bool, error)
	Status(ctx context.Context, userID int64) (*tickets.Summary, error)
	Snapshot(ctx context.Context, userID int64) (*tickets.Summary, error)
	GrantWheelSpin(ctx context.Context, userID int64, rewardCode string) (*tickets.SpinOutcome, error)
	RollWheel(ctx context.Context, userID int64) (*tickets.SpinOutcome, error)
	Leaderboard(ctx context.Context, limit int) ([]user.User, error)
}

// TicketHandlers serves the mini-app endpoints.
type TicketHandlers struct {
	engine TicketEngine
}

func NewTicketHandlers(engine TicketEngine) *TicketHandlers {
	return &TicketHandlers{engine: engine}
}

// Register registers routes on an authenticated group.
func (h *TicketHandlers) Register(r gin.IRouter) {
	r.GET("/me", h.getMe)
	r.POST("/me", h.registerMe)
	r.POST("/me/refresh", h.refreshMe)
	r.POST("/wheel/spin", h.spin)
	r.POST("/wheel/roll", h.roll)
}

// RegisterPublic registers cacheable read-only routes.
func (h *TicketHandlers) RegisterPublic(r gin.IRouter) {
	r.GET("/leaderboard", h.leaderboard)
	r.GET("/wheel/sectors", h.sectors)
}

// SpinRequest carries the sector the wheel stopped on.
type SpinRequest struct {
	RewardCode string `json:"reward_code" binding:"required" example:"tickets_2"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Tickets     int    `json:"tickets"`
}

// WheelSector is one reward the wheel can land on.
type WheelSector struct {
	Code    string `json:"code" example:"tickets_2"`
	Tickets int    `json:"tickets" example:"2"`
}

// @Summary Get my tickets
// @Description Stored ticket summary of the current user, no subscription re-check
// @Tags tickets
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} tickets.Summary
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /me [get]
func (h *TicketHandlers) getMe(c *gin.Context) {
	sum, err := h.engine.Snapshot(c.Request.Context(), mw.UserID(c))
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary Register
// @Description Registers the current user (or refreshes the display name) and returns a fresh summary
// @Tags tickets
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} tickets.Summary
// @Failure 503 {object} middleware.ErrorResponse "Giveaway paused"
// @Router /me [post]
func (h *TicketHandlers) registerMe(c *gin.Context) {
	ctx := c.Request.Context()
	id := mw.UserID(c)
	if _, _, err := h.engine.RegisterOrTouch(ctx, id, c.GetString(mw.DisplayNameCtxParam)); err != nil {
		mw.WriteError(c, err)
		return
	}
	sum, err := h.engine.Status(ctx, id)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary Refresh my status
// @Description Re-checks sponsor subscriptions and recomputes tickets
// @Tags tickets
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} tickets.Summary
// @Failure 404 {object} middleware.ErrorResponse
// @Router /me/refresh [post]
func (h *TicketHandlers) refreshMe(c *gin.Context) {
	sum, err := h.engine.Status(c.Request.Context(), mw.UserID(c))
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary Complete a wheel spin
// @Description Applies the reward of a finished spin; the code is validated against the server table
// @Tags wheel
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body SpinRequest true "Reward code"
// @Success 200 {object} tickets.SpinOutcome "granted or cooldown"
// @Failure 400 {object} middleware.ErrorResponse "Unknown reward code"
// @Failure 503 {object} middleware.ErrorResponse "Giveaway paused"
// @Router /wheel/spin [post]
func (h *TicketHandlers) spin(c *gin.Context) {
	var req SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.WriteError(c, apperrors.NewValidationError("reward_code", "is required"))
		return
	}
	out, err := h.engine.GrantWheelSpin(c.Request.Context(), mw.UserID(c), req.RewardCode)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Roll the wheel
// @Description The server picks the sector and applies it
// @Tags wheel
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} tickets.SpinOutcome "granted or cooldown"
// @Failure 503 {object} middleware.ErrorResponse "Giveaway paused"
// @Router /wheel/roll [post]
func (h *TicketHandlers) roll(c *gin.Context) {
	out, err := h.engine.RollWheel(c.Request.Context(), mw.UserID(c))
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Leaderboard
// @Tags tickets
// @Produce json
// @Param limit query int false "Max rows (default 10, max 100)"
// @Success 200 {array} LeaderboardEntry
// @Router /leaderboard [get]
func (h *TicketHandlers) leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	users, err := h.engine.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		mw.WriteError(c, err)
		return
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: u.ID, DisplayName: u.DisplayName, Tickets: u.TotalTickets})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Wheel sectors
// @Description Reward codes accepted by /wheel/spin and the tickets each grants
// @Tags wheel
// @Produce json
// @Success 200 {array} WheelSector
// @Router /wheel/sectors [get]
func (h *TicketHandlers) sectors(c *gin.Context) {
	codes := tickets.RewardCodes()
	out := make([]WheelSector, 0, len(codes))
	for _, code := range codes {
		n, _ := tickets.RewardAmount(code)
		out = append(out, WheelSector{Code: code, Tickets: n})
	}
	c.JSON(http.StatusOK, out)
}
