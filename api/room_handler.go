package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	rm "github.com/jmorel/room-booking-backend/room"
)

type RoomService interface {
	ListRooms(ctx context.Context, activeOnly bool) ([]rm.Room, error)
	FindRoomByID(ctx context.Context, id string) (rm.Room, error)
	CreateRoom(ctx context.Context, room rm.Room) (rm.Room, error)
	ModifyRoom(ctx context.Context, room rm.Room) error
	DeactivateRoom(ctx context.Context, id string) error
	ReactivateRoom(ctx context.Context, id string) error
	ListAmenities(ctx context.Context) ([]string, error)
}

type RoomHandler struct {
	service RoomService
}

func NewRoomHandler(service RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

func (h *RoomHandler) Register(rg *gin.RouterGroup) {
	adminOnly := AdminOnly()
	rg.GET("", h.List)
	rg.GET("/amenities", h.ListAmenities)
	rg.GET("/:id", h.GetByID)
	rg.POST("", adminOnly, h.Create)
	rg.PUT("/:id", adminOnly, h.Modify)
	rg.PUT("/:id/deactivate", adminOnly, h.Deactivate)
	rg.PUT("/:id/reactivate", adminOnly, h.Reactivate)
}

// List returns active rooms by default; admins can request all rooms with
// ?all=true.
func (h *RoomHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	rooms, err := h.service.ListRooms(c.Request.Context(), activeOnly)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve rooms"})
		return
	}

	c.IndentedJSON(http.StatusOK, rooms)
}

func (h *RoomHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	room, err := h.service.FindRoomByID(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, rm.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch room"})
		return
	}

	c.IndentedJSON(http.StatusOK, room)
}

func (h *RoomHandler) Create(c *gin.Context) {
	var room rm.Room

	if err := c.BindJSON(&room); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	inserted, err := h.service.CreateRoom(c.Request.Context(), room)

	if err != nil {
		c.Error(err)
		if errors.Is(err, rm.ErrInvalidRoom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		}
		return
	}

	c.JSON(http.StatusCreated, inserted)
}

func (h *RoomHandler) Modify(c *gin.Context) {
	var room rm.Room
	id := c.Param("id")

	if err := c.BindJSON(&room); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	room.ID = id

	err := h.service.ModifyRoom(c.Request.Context(), room)

	if err != nil {
		c.Error(err)
		if errors.Is(err, rm.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		} else if errors.Is(err, rm.ErrInvalidRoom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to modify room"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "room modified"})
}

func (h *RoomHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false, "room deactivated")
}

func (h *RoomHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true, "room reactivated")
}

func (h *RoomHandler) setActive(c *gin.Context, active bool, message string) {
	id := c.Param("id")

	var err error
	if active {
		err = h.service.ReactivateRoom(c.Request.Context(), id)
	} else {
		err = h.service.DeactivateRoom(c.Request.Context(), id)
	}

	if err != nil {
		c.Error(err)
		if errors.Is(err, rm.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update room"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": message})
}

func (h *RoomHandler) ListAmenities(c *gin.Context) {
	amenities, err := h.service.ListAmenities(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve amenities"})
		return
	}

	c.IndentedJSON(http.StatusOK, amenities)
}
