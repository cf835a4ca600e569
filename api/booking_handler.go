package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	bk "github.com/jmorel/room-booking-backend/booking"
	"github.com/jmorel/room-booking-backend/identity"
)

type BookingService interface {
	FindBookingByID(ctx context.Context, id string) (bk.Booking, error)
	FindBookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]bk.Booking, error)
	FindBookingsForRoom(ctx context.Context, roomID string, from, to time.Time) ([]bk.Booking, error)
	CreateBooking(ctx context.Context, booking bk.Booking) (bk.Booking, error)
	ModifyBooking(ctx context.Context, updated bk.Booking, user identity.User) error
	CancelBooking(ctx context.Context, id string, user identity.User) error
	CompleteBooking(ctx context.Context, id string) error
	DeleteBooking(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bk.AvailabilityResult, error)
	PreviewRecurring(ctx context.Context, request bk.RecurringRequest) ([]bk.RecurringInstance, error)
	CreateRecurringBookings(ctx context.Context, request bk.RecurringRequest, user identity.User) (bk.RecurringResult, error)
	GetBookingCountPerRoom(ctx context.Context) ([]bk.RoomBookingCount, error)
	GetBookingCountPerRoomInPeriod(ctx context.Context, start, end time.Time) ([]bk.RoomBookingCount, error)
	GetBookingCountPerWeekDay(ctx context.Context) ([]bk.WeekDayBookingCount, error)
}

type BookingHandler struct {
	service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(rg *gin.RouterGroup) {
	adminOnly := AdminOnly()
	rg.GET("", h.ListMine)
	rg.GET("/booking/:id", h.GetByID)
	rg.GET("/room/:roomId", h.ListByRoom)
	rg.GET("/availability", h.CheckAvailability)
	rg.POST("", h.Create)
	rg.POST("/recurring/preview", h.PreviewRecurring)
	rg.POST("/recurring", h.CreateRecurring)
	rg.PUT("/:id/modify", h.Modify)
	rg.PUT("/:id/cancel", h.Cancel)
	rg.PUT("/:id/complete", adminOnly, h.Complete)
	rg.DELETE("/:id", adminOnly, h.Delete)

	rg.GET("/stats/room", adminOnly, h.GetRoomStats)
	rg.GET("/stats/room/period", adminOnly, h.GetRoomStatsPerPeriod)
	rg.GET("/stats/day", adminOnly, h.GetStatsPerWeekDay)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	from, to, err := parseDateRange(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.service.FindBookingsForUser(c.Request.Context(), user.ID, from, to)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}

	c.IndentedJSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	booking, err := h.service.FindBookingByID(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "booking not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch booking",
		})
		return
	}

	c.IndentedJSON(http.StatusOK, booking)
}

func (h *BookingHandler) ListByRoom(c *gin.Context) {
	roomID := c.Param("roomId")

	from, to, err := parseDateRange(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.service.FindBookingsForRoom(c.Request.Context(), roomID, from, to)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}

	c.IndentedJSON(http.StatusOK, bookings)
}

func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	roomID := c.Query("roomId")

	start, err := time.Parse(time.RFC3339, c.Query("start"))

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse start"})
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("end"))

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse end"})
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), roomID, start, end, c.Query("excludeBookingId"))

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrInvalidBooking) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check availability"})
		return
	}

	c.IndentedJSON(http.StatusOK, result)
}

func (h *BookingHandler) Create(c *gin.Context) {
	user := c.MustGet("user").(identity.User)
	var booking bk.Booking

	if err := c.BindJSON(&booking); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to parse JSON body",
		})
		return
	}

	booking.UserID = user.ID
	booking.Username = user.Username

	inserted, err := h.service.CreateBooking(c.Request.Context(), booking)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrInvalidBooking) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, bk.ErrTimeSlotConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "time slot is no longer available"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, inserted)
}

func (h *BookingHandler) PreviewRecurring(c *gin.Context) {
	var request bk.RecurringRequest

	if err := c.BindJSON(&request); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	instances, err := h.service.PreviewRecurring(c.Request.Context(), request)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrInvalidBooking) || errors.Is(err, bk.ErrInvalidPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to preview recurring booking"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, instances)
}

func (h *BookingHandler) CreateRecurring(c *gin.Context) {
	user := c.MustGet("user").(identity.User)
	var request bk.RecurringRequest

	if err := c.BindJSON(&request); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	result, err := h.service.CreateRecurringBookings(c.Request.Context(), request, user)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrInvalidBooking) || errors.Is(err, bk.ErrInvalidPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, bk.ErrNoBookingsCreated) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "no occurrences could be booked",
				"conflicts": result.Conflicts,
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recurring booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) Modify(c *gin.Context) {
	user := c.MustGet("user").(identity.User)
	booking := bk.Booking{}
	id := c.Param("id")

	err := c.BindJSON(&booking)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	booking.ID = id

	err = h.service.ModifyBooking(c.Request.Context(), booking, user)

	if err != nil {
		c.Error(err)

		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else if errors.Is(err, bk.ErrNotAllowed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to modify this booking"})
		} else if errors.Is(err, bk.ErrInvalidBookingState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking state"})
		} else if errors.Is(err, bk.ErrInvalidBooking) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, bk.ErrTimeSlotConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "time slot is no longer available"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to modify booking"})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking modified"})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	user := c.MustGet("user").(identity.User)

	err := h.service.CancelBooking(c.Request.Context(), id, user)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "booking not found",
			})
		} else if errors.Is(err, bk.ErrInvalidBookingState) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid booking state",
			})
		} else if errors.Is(err, bk.ErrNotAllowed) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "not allowed to cancel this booking",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to cancel booking",
			})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id := c.Param("id")

	err := h.service.CompleteBooking(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else if errors.Is(err, bk.ErrInvalidBookingState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking state"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete booking"})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking completed"})
}

func (h *BookingHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	err := h.service.DeleteBooking(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking deleted"})
}

func (h *BookingHandler) GetRoomStats(c *gin.Context) {
	stats, err := h.service.GetBookingCountPerRoom(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.IndentedJSON(http.StatusOK, stats)
}

func (h *BookingHandler) GetRoomStatsPerPeriod(c *gin.Context) {
	startQuery := c.Query("startPeriod")
	endQuery := c.Query("endPeriod")

	startTime, err := time.Parse(time.DateOnly, startQuery)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse startPeriod"})
		return
	}

	endTime, err := time.Parse(time.DateOnly, endQuery)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse endPeriod"})
		return
	}

	stats, err := h.service.GetBookingCountPerRoomInPeriod(c.Request.Context(), startTime, endTime)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.IndentedJSON(http.StatusOK, stats)
}

func (h *BookingHandler) GetStatsPerWeekDay(c *gin.Context) {
	stats, err := h.service.GetBookingCountPerWeekDay(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.IndentedJSON(http.StatusOK, stats)
}

// parseDateRange reads optional from/to date query parameters, defaulting to
// a 30-day window starting today.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 30)

	if fromQuery := c.Query("from"); len(fromQuery) != 0 {
		parsed, err := time.Parse(time.DateOnly, fromQuery)

		if err != nil {
			return time.Time{}, time.Time{}, errors.New("failed to parse from")
		}

		from = parsed
	}

	if toQuery := c.Query("to"); len(toQuery) != 0 {
		parsed, err := time.Parse(time.DateOnly, toQuery)

		if err != nil {
			return time.Time{}, time.Time{}, errors.New("failed to parse to")
		}

		to = parsed
	}

	return from, to, nil
}
