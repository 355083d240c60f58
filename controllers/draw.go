// controllers/draw.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/services"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DrawInput struct {
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	MinWashes   int    `json:"minWashes" binding:"omitempty,min=1"`
	Service     string `json:"service"`
	AutoApprove bool   `json:"autoApprove"`
}

type ApproveWinnerInput struct {
	Date         string     `json:"date" binding:"required"` // YYYY-MM-DD
	CustomerID   *uuid.UUID `json:"customerId"`
	CustomerName string     `json:"customerName"`
	Phone        string     `json:"phone"`
	Plate        string     `json:"plate"`
}

type RescheduleInput struct {
	CandidateID uuid.UUID `json:"candidateId" binding:"required"`
	ToDate      string    `json:"toDate" binding:"required"` // YYYY-MM-DD
}

type RevokeWinnerInput struct {
	Reason string `json:"reason" binding:"required"`
}

func parseDrawDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func respondDrawError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	switch {
	case errors.As(err, &conflict):
		utils.RespondWithError(c, http.StatusConflict, conflict.Error())
	case errors.Is(err, services.ErrNoCandidates):
		utils.RespondWithError(c, http.StatusNotFound, "No eligible candidates for this date")
	case errors.Is(err, services.ErrWinnerNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Winner not found")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// GetDrawCandidates lists the eligible pool for a date without touching state
func GetDrawCandidates(c *gin.Context) {
	dateParam := c.Query("date")
	if dateParam == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := parseDrawDate(dateParam)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	minWashes, _ := strconv.Atoi(c.DefaultQuery("minWashes", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	registry := services.NewDrawRegistry(config.DB, nil)
	candidates, err := registry.ListCandidates(services.CandidateQuery{
		Date:          date,
		MinWashes:     minWashes,
		ServiceFilter: c.Query("service"),
		Limit:         limit,
	})
	if err != nil {
		respondDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// GetDrawWinner returns the approved winner for a date, if any
func GetDrawWinner(c *gin.Context) {
	dateParam := c.Query("date")
	if dateParam == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := parseDrawDate(dateParam)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	registry := services.NewDrawRegistry(config.DB, nil)
	winner, err := registry.GetApprovedWinner(date)
	if err != nil {
		respondDrawError(c, err)
		return
	}
	if winner == nil {
		utils.RespondWithError(c, http.StatusNotFound, "No approved winner for this date")
		return
	}

	c.JSON(http.StatusOK, winner)
}

// RunDraw selects a winner candidate for a date. Idempotent: an existing
// approved winner is returned unchanged.
func RunDraw(c *gin.Context) {
	var input DrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date, err := parseDrawDate(input.Date)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	operator, _ := c.Get("userId")
	operatorID, _ := operator.(string)

	registry := services.NewDrawRegistry(config.DB, nil)
	result, err := registry.Draw(services.CandidateQuery{
		Date:          date,
		MinWashes:     input.MinWashes,
		ServiceFilter: input.Service,
	}, input.AutoApprove, operatorID)
	if err != nil {
		respondDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ApproveWinner approves a winner for a date; 409 when the date is taken
func ApproveWinner(c *gin.Context) {
	var input ApproveWinnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date, err := parseDrawDate(input.Date)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	if input.CustomerID == nil && input.Phone == "" && input.Plate == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "A customer ID, phone or plate is required")
		return
	}

	operator, _ := c.Get("userId")
	operatorID, _ := operator.(string)

	registry := services.NewDrawRegistry(config.DB, nil)
	winner, err := registry.Approve(date, services.WinnerIdentity{
		CustomerID:   input.CustomerID,
		CustomerName: input.CustomerName,
		Phone:        input.Phone,
		Plate:        utils.NormalizePlate(input.Plate),
	}, operatorID)
	if err != nil {
		respondDrawError(c, err)
		return
	}

	c.JSON(http.StatusCreated, winner)
}

// RescheduleWinner moves a drawn candidate to a different date
func RescheduleWinner(c *gin.Context) {
	var input RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	toDate, err := parseDrawDate(input.ToDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid toDate, expected YYYY-MM-DD")
		return
	}

	operator, _ := c.Get("userId")
	operatorID, _ := operator.(string)

	registry := services.NewDrawRegistry(config.DB, nil)
	winner, err := registry.Reschedule(input.CandidateID, toDate, operatorID)
	if err != nil {
		respondDrawError(c, err)
		return
	}

	c.JSON(http.StatusCreated, winner)
}

// RevokeWinner revokes an approved winner, freeing its date
func RevokeWinner(c *gin.Context) {
	winnerID := c.Param("id")
	winnerUUID, err := uuid.Parse(winnerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid winner ID format")
		return
	}

	var input RevokeWinnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	registry := services.NewDrawRegistry(config.DB, nil)
	winner, err := registry.Revoke(winnerUUID, input.Reason)
	if err != nil {
		respondDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, winner)
}

// NotifyWinner sends the prize message to a winner immediately
func NotifyWinner(c *gin.Context) {
	winnerID := c.Param("id")
	winnerUUID, err := uuid.Parse(winnerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid winner ID format")
		return
	}

	notifier := services.NewWinnerNotifier(config.DB)
	if err := notifier.NotifyWinner(winnerUUID); err != nil {
		if errors.Is(err, services.ErrWinnerNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Winner not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to notify winner")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Winner notified successfully"})
}
