package handlers

import (
	"net/http"

	"github.com/LovationAdmin/tripchalo-api/middleware"
	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TripHandler struct {
	Trips  *services.TripService
	Logger *zap.Logger
}

func NewTripHandler(trips *services.TripService, logger *zap.Logger) *TripHandler {
	return &TripHandler{Trips: trips, Logger: logger}
}

func (h *TripHandler) fail(c *gin.Context, err error) {
	respondError(c, h.Logger, err)
}

// ============================================================================
// TRIP LIFECYCLE
// ============================================================================

func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.Trips.CreateTrip(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Trip created successfully",
		"trip_id":   trip.ID,
		"trip_code": trip.TripCode,
	})
}

func (h *TripHandler) JoinTrip(c *gin.Context) {
	var req models.JoinTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.Trips.JoinTrip(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Joined successfully",
		"trip_id": trip.ID,
	})
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	detail, err := h.Trips.TripDetails(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.Trips.DeleteTrip(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted successfully"})
}

func (h *TripHandler) LeaveTrip(c *gin.Context) {
	if err := h.Trips.LeaveTrip(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have left the trip"})
}

func (h *TripHandler) LockTrip(c *gin.Context) {
	if _, err := h.Trips.LockTrip(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip locked and confirmed!"})
}

// ============================================================================
// ITINERARY & VOTING
// ============================================================================

func (h *TripHandler) GenerateItinerary(c *gin.Context) {
	itinerary, err := h.Trips.GenerateItinerary(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Itinerary generated", "data": itinerary})
}

func (h *TripHandler) GetItinerary(c *gin.Context) {
	view, err := h.Trips.GetItinerary(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TripHandler) Vote(c *gin.Context) {
	var req models.OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tally, err := h.Trips.Vote(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.OptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "votes": tally})
}

func (h *TripHandler) Finalize(c *gin.Context) {
	var req models.OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.Trips.Finalize(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.OptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip finalized", "final_choice": trip.FinalChosenOption})
}

// ============================================================================
// CONFIRMED TRIP
// ============================================================================

func (h *TripHandler) ConfirmedDetails(c *gin.Context) {
	details, err := h.Trips.ConfirmedDetails(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *TripHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.Trips.Chat(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Response: answer})
}
