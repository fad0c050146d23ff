package types

import (
	"time"

	"github.com/google/uuid"
)

// SortPreference persists the active sort of a list view (descriptions or
// relations) per annotator, replacing the cookie the browser client used.
type SortPreference struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Annotator string `gorm:"column:annotator;not null;index:idx_sort_pref_annotator_list,unique" json:"annotator"`
	ListName  string `gorm:"column:list_name;not null;index:idx_sort_pref_annotator_list,unique" json:"list_name"`
	SortKey   string `gorm:"column:sort_key;not null" json:"sort_key"` // e.g. "StartA", "ConceptD"

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SortPreference) TableName() string { return "sort_preference" }
