package domain

import "time"

// Product is the relational backend row. The id is a server-generated
// surrogate key; user_id is a soft reference into the external users-api
// with no database-level constraint.
type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"index" json:"name"`
	Price     float64   `json:"price"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"userId"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
