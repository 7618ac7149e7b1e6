package httppresentation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apporder "github.com/leafy-market/leafy-backend/internal/application/order"
)

func (h *Handler) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	placed, err := h.orders.PlaceOrder(c.Request.Context(), actorFrom(c), apporder.PlaceOrderInput{
		BatchID:  req.BatchID,
		Quantity: req.Quantity,
		Phone:    req.Phone,
		Address:  req.Address,
		Delivery: req.Delivery,
		Payment:  req.Payment,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	userType := "registered"
	if placed.IsGuest() {
		userType = "guest"
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"orderId":  placed.ID,
		"userType": userType,
		"order":    toOrderResponse(placed),
	})
}

// handleListOrders scopes the listing by actor: admins see everything,
// customers their own, guests an exact phone or order-id lookup.
func (h *Handler) handleListOrders(c *gin.Context) {
	orders, err := h.orders.ListForActor(c.Request.Context(), actorFrom(c), apporder.Lookup{
		Phone:   c.Query("phone"),
		OrderID: c.Query("orderId"),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) handleUpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := h.orders.UpdateStatus(c.Request.Context(), actorFrom(c), c.Param("orderId"), req.Status)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": toOrderResponse(updated)})
}
