package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmorel/room-booking-backend/identity"
)

type UserHandler struct {
	client    identity.IdentityClient
	adminRole string
}

func NewUserHandler(client identity.IdentityClient, adminRole string) *UserHandler {
	return &UserHandler{
		client:    client,
		adminRole: adminRole,
	}
}

func (h *UserHandler) Register(rg *gin.RouterGroup) {
	auth := SessionAuth(h.client, h.adminRole)
	rg.GET("/me", auth, h.GetUserInfo)
	rg.GET("/search", auth, AdminOnly(), h.SearchUsers)
}

func (h *UserHandler) GetUserInfo(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	c.IndentedJSON(http.StatusOK, user)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("query")
	query = strings.TrimSpace(query)

	if len(query) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query cannot be empty"})
		return
	}

	users, err := h.client.SearchUsers(c.Request.Context(), query, 20)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}

	c.IndentedJSON(http.StatusOK, users)
}
