package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnnotationGraph is the stored snapshot row: one per (video, annotator),
// overwritten on every upload.
type AnnotationGraph struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	VideoID   string `gorm:"column:video_id;not null;index:idx_annotation_graph_video_annotator,unique" json:"video_id"`
	Annotator string `gorm:"column:annotator;not null;index:idx_annotation_graph_video_annotator,unique" json:"annotator"`
	Language  string `gorm:"column:language;not null" json:"language"`

	Relations         datatypes.JSON `gorm:"column:relations;type:jsonb" json:"relations"`           // []graph.Relation
	Definitions       datatypes.JSON `gorm:"column:definitions;type:jsonb" json:"definitions"`       // []descriptions.Description
	ConceptVocabulary datatypes.JSON `gorm:"column:concept_vocabulary;type:jsonb" json:"concept_vocabulary"` // map[string][]string

	AnnotationCompleted bool      `gorm:"column:annotation_completed;not null;default:false" json:"annotation_completed"`
	LastModification    time.Time `gorm:"column:last_modification;not null" json:"last_modification"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnnotationGraph) TableName() string { return "annotation_graph" }
