package httppresentation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": session.Username,
		"role":     string(session.Role),
		"token":    session.Token,
	})
}

func (h *Handler) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"username": session.Username,
		"role":     string(session.Role),
		"token":    session.Token,
	})
}

// handleLogout exists for frontend symmetry. Tokens are stateless; the client
// discards its copy and the server simply acknowledges, stale tokens included.
func (h *Handler) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) handleUser(c *gin.Context) {
	actor := actorFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": actor.Username,
		"role":     string(actor.Role),
	})
}
