package types

import (
	"github.com/lexivid/annotator-backend/internal/descriptions"
	"github.com/lexivid/annotator-backend/internal/graph"
)

// AnnotationSnapshot is the durable wire form of a document's full
// annotation state. Every accepted mutation re-uploads the whole snapshot;
// there is no incremental diffing.
type AnnotationSnapshot struct {
	ID                string                     `json:"id"`
	Relations         []graph.Relation           `json:"relations"`
	Definitions       []descriptions.Description `json:"definitions"`
	Annotator         string                     `json:"annotator"`
	ConceptVocabulary map[string][]string        `json:"conceptVocabulary"`
	Language          string                     `json:"language"`
	IsCompleted       bool                       `json:"is_completed"`
}
