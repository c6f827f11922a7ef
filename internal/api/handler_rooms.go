package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

type putRoomRequest struct {
	Name          string  `json:"name" binding:"required,max=128"`
	Category      string  `json:"category" binding:"max=128"`
	Type          string  `json:"type" binding:"omitempty,room_type"`
	PricePerNight float64 `json:"pricePerNight" binding:"min=0"`
	Capacity      int     `json:"capacity" binding:"omitempty,min=1"`
}

type roomResponse struct {
	model.Room
	RoomType parse.RoomType `json:"roomType"`
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]roomResponse, len(rooms))
	for i, r := range rooms {
		out[i] = roomResponse{Room: r, RoomType: r.RoomType()}
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// PutRoom handles PUT /api/rooms/:id, creating or replacing a room. Admin only.
func (h *Handler) PutRoom(c *gin.Context) {
	id, err := parseUUID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req putRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	room := model.Room{
		ID:            id,
		Name:          req.Name,
		Category:      req.Category,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
	}
	if req.Type != "" {
		room.Type, _ = parse.ParseRoomType(req.Type)
	}
	if room.Capacity == 0 {
		room.Capacity = 1
	}

	if err := h.store.UpsertRoom(c.Request.Context(), &room); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse{Room: room, RoomType: room.RoomType()})
}
