package models

import "time"

// SOType distinguishes the scope of a stock opname session.
type SOType string

const (
	// SOTypePartial counts a user-selected subset of the catalog.
	SOTypePartial SOType = "partial"
	// SOTypeGrand counts the whole catalog.
	SOTypeGrand SOType = "grand"
)

// SOStep is the resume pointer for an interrupted session.
type SOStep string

const (
	StepItemSelection  SOStep = "item_selection"
	StepReconciliation SOStep = "reconciliation"
)

// SOSession is the single in-progress stock count. At most one exists at a
// time; it survives restarts until completed or discarded.
type SOSession struct {
	Type         SOType          `bson:"type" json:"type"`
	StartTime    time.Time       `bson:"start_time" json:"start_time"`
	LastStep     SOStep          `bson:"last_step" json:"last_step"`
	WorkingItems []SOWorkingItem `bson:"working_items" json:"working_items"`
}

// SOWorkingItem is one catalog item inside the active count. PhysicalQty is
// user-entered and defaults to 0; a cleared input field also means 0.
type SOWorkingItem struct {
	Code        string  `bson:"code" json:"code"`
	Name        string  `bson:"name" json:"name"`
	SKU         string  `bson:"sku" json:"sku"`
	Category    string  `bson:"category" json:"category"`
	Price       float64 `bson:"price" json:"price"`
	SystemQty   int     `bson:"system_qty" json:"system_qty"`
	PhysicalQty int     `bson:"physical_qty" json:"physical_qty"`
}
