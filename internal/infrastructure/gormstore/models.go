package gormstore

import (
	"time"

	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domorder "github.com/leafy-market/leafy-backend/internal/domain/order"
	domuser "github.com/leafy-market/leafy-backend/internal/domain/user"
)

// Rows mirror the original storefront schema; column names stay compatible so
// an existing database can be pointed at directly.

type batchRow struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;size:100;not null"`
	PlantDate    time.Time `gorm:"column:plant_date;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Stock        int       `gorm:"column:stock;not null"`
	ReadyForSale bool      `gorm:"column:ready_for_sale;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (batchRow) TableName() string { return "batches" }

type orderRow struct {
	ID          string    `gorm:"column:id;size:50;primaryKey"`
	UserID      string    `gorm:"column:user_id;size:50;not null"`
	BatchID     int64     `gorm:"column:batch_id;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Phone       string    `gorm:"column:phone;size:20"`
	Address     string    `gorm:"column:address"`
	Delivery    string    `gorm:"column:delivery;size:20"`
	Payment     string    `gorm:"column:payment;size:50"`
	Status      string    `gorm:"column:status;size:20;default:pending"`
	OrderDate   time.Time `gorm:"column:order_date"`
	TotalPrice  int64     `gorm:"column:total_price;not null"`
	LastUpdated time.Time `gorm:"column:last_updated"`
}

func (orderRow) TableName() string { return "orders" }

type userRow struct {
	Username  string    `gorm:"column:username;size:50;primaryKey"`
	Password  string    `gorm:"column:password;size:255;not null"`
	Role      string    `gorm:"column:role;size:20;not null;default:customer"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

func toBatchRow(b *dombatch.Batch) batchRow {
	return batchRow{
		ID:           b.ID,
		Name:         b.Name,
		PlantDate:    b.PlantDate,
		Quantity:     b.Quantity,
		Stock:        b.Stock,
		ReadyForSale: b.ReadyForSale,
		CreatedAt:    b.CreatedAt,
	}
}

func (r batchRow) toDomain() *dombatch.Batch {
	return &dombatch.Batch{
		ID:           r.ID,
		Name:         r.Name,
		PlantDate:    r.PlantDate,
		Quantity:     r.Quantity,
		Stock:        r.Stock,
		ReadyForSale: r.ReadyForSale,
		CreatedAt:    r.CreatedAt,
	}
}

func toOrderRow(o *domorder.Order) orderRow {
	return orderRow{
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

func (r orderRow) toDomain() *domorder.Order {
	return &domorder.Order{
		ID:          r.ID,
		UserID:      r.UserID,
		BatchID:     r.BatchID,
		Quantity:    r.Quantity,
		Phone:       r.Phone,
		Address:     r.Address,
		Delivery:    r.Delivery,
		Payment:     r.Payment,
		Status:      domorder.Status(r.Status),
		OrderDate:   r.OrderDate,
		TotalPrice:  r.TotalPrice,
		LastUpdated: r.LastUpdated,
	}
}

func toUserRow(u *domuser.User) userRow {
	return userRow{
		Username:  u.Username,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (r userRow) toDomain() *domuser.User {
	return &domuser.User{
		Username:     r.Username,
		PasswordHash: r.Password,
		Role:         domuser.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}
