package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChangeAction names the mutation recorded by a change-log entry.
type ChangeAction string

const (
	ChangeInsert ChangeAction = "INSERT"
	ChangeUpdate ChangeAction = "UPDATE"
	ChangeDelete ChangeAction = "DELETE"
)

// ChangeEntry is one append-only audit record. Before and After carry the
// structured document states around the mutation, not a stringified dump.
type ChangeEntry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Entity   string             `bson:"entity" json:"entity"`
	EntityID string             `bson:"entity_id" json:"entity_id"`
	Action   ChangeAction       `bson:"action" json:"action"`
	Actor    string             `bson:"actor" json:"actor"`
	At       time.Time          `bson:"at" json:"at"`
	Before   interface{}        `bson:"before,omitempty" json:"before,omitempty"`
	After    interface{}        `bson:"after,omitempty" json:"after,omitempty"`
}
