package httppresentation

import (
	"fmt"
	"time"

	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domorder "github.com/leafy-market/leafy-backend/internal/domain/order"
)

// JSON field names stay compatible with the original storefront frontend.

const dateLayout = "2006-01-02"

type batchResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PlantDate    string `json:"plantDate"`
	Quantity     int    `json:"quantity"`
	Stock        int    `json:"stock"`
	ReadyForSale bool   `json:"readyForSale"`
}

func toBatchResponse(b *dombatch.Batch) batchResponse {
	return batchResponse{
		ID:           b.ID,
		Name:         b.Name,
		PlantDate:    b.PlantDate.Format(dateLayout),
		Quantity:     b.Quantity,
		Stock:        b.Stock,
		ReadyForSale: b.ReadyForSale,
	}
}

type catalogEntryResponse struct {
	batchResponse
	AgeDays         int     `json:"ageDays"`
	Orderable       bool    `json:"orderable"`
	ProgressPercent float64 `json:"progressPercent"`
	DaysToReady     int     `json:"daysToReady"`
}

func toCatalogEntryResponse(e dombatch.DisplayEntry) catalogEntryResponse {
	return catalogEntryResponse{
		batchResponse:   toBatchResponse(&e.Batch),
		AgeDays:         e.AgeDays,
		Orderable:       e.Orderable,
		ProgressPercent: e.ProgressPercent,
		DaysToReady:     e.DaysToReady,
	}
}

type batchRequest struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PlantDate    string `json:"plantDate" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	Stock        int    `json:"stock"`
	ReadyForSale bool   `json:"readyForSale"`
}

func (r batchRequest) plantDate() (time.Time, error) {
	return parsePlantDate(r.PlantDate)
}

type createBatchRequest struct {
	Name      string `json:"name"`
	PlantDate string `json:"plantDate" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (r createBatchRequest) plantDate() (time.Time, error) {
	return parsePlantDate(r.PlantDate)
}

func parsePlantDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("plantDate must be YYYY-MM-DD or RFC3339: %w", err)
	}
	return t, nil
}

type orderResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	BatchID     int64     `json:"batchId"`
	Quantity    int       `json:"quantity"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Delivery    string    `json:"delivery"`
	Payment     string    `json:"payment"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"orderDate"`
	TotalPrice  int64     `json:"totalPrice"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		BatchID:     o.BatchID,
		Quantity:    o.Quantity,
		Phone:       o.Phone,
		Address:     o.Address,
		Delivery:    o.Delivery,
		Payment:     o.Payment,
		Status:      string(o.Status),
		OrderDate:   o.OrderDate,
		TotalPrice:  o.TotalPrice,
		LastUpdated: o.LastUpdated,
	}
}

type placeOrderRequest struct {
	BatchID  int64  `json:"batchId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Delivery string `json:"delivery" binding:"required,oneof=pickup deliver"`
	Payment  string `json:"payment" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
