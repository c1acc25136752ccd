package core

import "time"

const (
	ChangeAdded      ChangeKind = "added"
	ChangeEdited     ChangeKind = "edited"
	ChangeDeleted    ChangeKind = "deleted"
	ChangeSorted     ChangeKind = "sorted"
	ChangeCategories ChangeKind = "categories"
)

type ChangeKind string

// ChangeEvent describes one completed mutation.
type ChangeEvent struct {
	Kind  ChangeKind  `json:"kind"`
	Slot  string      `json:"slot"`
	IDs   []ExpenseID `json:"ids,omitempty"`
	Label string      `json:"label,omitempty"`
	Count int         `json:"count"`
	At    time.Time   `json:"at"`
}
