package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Farmer is a seller the brokerage buys loads from.
type Farmer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Village     string             `bson:"village" json:"village"`
	Phone       string             `bson:"phone" json:"phone"`
	BankAccount string             `bson:"bank_account,omitempty" json:"bank_account,omitempty"`
	BankIFSC    string             `bson:"bank_ifsc,omitempty" json:"bank_ifsc,omitempty"`
	DefaultRate float64            `bson:"default_rate" json:"default_rate"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Tags        string             `bson:"tags,omitempty" json:"tags,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	Version     int                `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Mill is a buyer the brokerage sells loads to.
type Mill struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Village     string             `bson:"village" json:"village"`
	Phone       string             `bson:"phone" json:"phone"`
	ContactName string             `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	DefaultRate float64            `bson:"default_rate" json:"default_rate"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	Version     int                `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Vehicle is a truck used to move loads. Number is unique.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number      string             `bson:"number" json:"number"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	OwnerName   string             `bson:"owner_name,omitempty" json:"owner_name,omitempty"`
	OwnerPhone  string             `bson:"owner_phone,omitempty" json:"owner_phone,omitempty"`
	CapacityKg  float64            `bson:"capacity_kg,omitempty" json:"capacity_kg,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	Version     int                `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// UnknownPartyName is rendered when a load references a farmer, mill or
// vehicle that no longer resolves. Referential integrity is advisory.
const UnknownPartyName = "Unknown"
