package models

import "time"

// SOHistoryRecord is the immutable snapshot written once per completed
// count. Records are never updated; they can only be purged by id.
type SOHistoryRecord struct {
	ID                 string          `bson:"_id,omitempty" json:"id"`
	Date               time.Time       `bson:"date" json:"date"`
	UserID             string          `bson:"user_id" json:"user_id"`
	UserName           string          `bson:"user_name" json:"user_name"`
	TotalItems         int             `bson:"total_items" json:"total_items"`
	TotalQtyDifference int             `bson:"total_qty_difference" json:"total_qty_difference"`
	TotalRpDifference  float64         `bson:"total_rp_difference" json:"total_rp_difference"`
	DurationSeconds    int64           `bson:"duration_seconds" json:"duration_seconds"`
	Items              []SOHistoryItem `bson:"items" json:"items"`
}

// SOHistoryItem is the flat per-item snapshot stored inside a history
// record. Difference and Total are denormalized at completion time.
type SOHistoryItem struct {
	Code        string  `bson:"code" json:"code"`
	Name        string  `bson:"name" json:"name"`
	SystemQty   int     `bson:"system_qty" json:"system_qty"`
	PhysicalQty int     `bson:"physical_qty" json:"physical_qty"`
	Difference  int     `bson:"difference" json:"difference"`
	Price       float64 `bson:"price" json:"price"`
	Total       float64 `bson:"total" json:"total"`
}
