package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentAllocation records how much of a mill payment was applied to one load.
type PaymentAllocation struct {
	LoadID     primitive.ObjectID `bson:"load_id" json:"load_id"`
	LoadNumber string             `bson:"load_number" json:"load_number"`
	Amount     float64            `bson:"amount" json:"amount"`
}

// MillPayment is money received from a mill, allocated FIFO across that
// mill's unpaid loads.
type MillPayment struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MillID      primitive.ObjectID  `bson:"mill_id" json:"mill_id"`
	PaymentDate time.Time           `bson:"payment_date" json:"payment_date"`
	Amount      float64             `bson:"amount" json:"amount"`
	Method      string              `bson:"method,omitempty" json:"method,omitempty"`
	Reference   string              `bson:"reference,omitempty" json:"reference,omitempty"`
	Allocations []PaymentAllocation `bson:"allocations" json:"allocations"`
	Unallocated float64             `bson:"unallocated" json:"unallocated"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

// FarmerPayout is money paid out to a farmer against one load. The credit cut,
// when eligible, is applied here at payout time and never rewrites the load's
// settlement snapshot.
type FarmerPayout struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FarmerID        primitive.ObjectID `bson:"farmer_id" json:"farmer_id"`
	LoadID          primitive.ObjectID `bson:"load_id" json:"load_id"`
	LoadNumber      string             `bson:"load_number" json:"load_number"`
	PaymentDate     time.Time          `bson:"payment_date" json:"payment_date"`
	Amount          float64            `bson:"amount" json:"amount"`
	CreditCutAmount float64            `bson:"credit_cut_amount" json:"credit_cut_amount"`
	Method          string             `bson:"method,omitempty" json:"method,omitempty"`
	Reference       string             `bson:"reference,omitempty" json:"reference,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// Advance is money advanced to a farmer ahead of settlement. Advances are
// ledger history only; they do not feed the settlement computation.
type Advance struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FarmerID  primitive.ObjectID  `bson:"farmer_id" json:"farmer_id"`
	LoadID    *primitive.ObjectID `bson:"load_id,omitempty" json:"load_id,omitempty"`
	Date      time.Time           `bson:"date" json:"date"`
	Amount    float64             `bson:"amount" json:"amount"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
