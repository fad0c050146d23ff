package export

import (
	"encoding/json"
	"testing"

	"github.com/lexivid/annotator-backend/internal/descriptions"
	"github.com/lexivid/annotator-backend/internal/graph"
	"github.com/lexivid/annotator-backend/internal/types"
)

func testSnapshot() types.AnnotationSnapshot {
	return types.AnnotationSnapshot{
		ID:        "vid-9",
		Annotator: "alice",
		Language:  "en",
		ConceptVocabulary: map[string][]string{
			"graph": {"network"},
			"node":  {},
		},
		Relations: []graph.Relation{
			{Prerequisite: "node", Target: "graph", Weight: graph.WeightStrong, Time: "00:01:00", SentID: 3, WordID: 1},
		},
		Definitions: []descriptions.Description{
			{Concept: "graph", Start: "00:00:10", End: "00:00:20", ID: 0, StartSentID: 1, EndSentID: 1, DescriptionType: descriptions.TypeDefinition},
		},
	}
}

func TestJSONLDShape(t *testing.T) {
	doc := JSONLD(testSnapshot(), "https://example.org/annotator/manu")

	if len(doc.Context) != 2 {
		t.Fatalf("context entries = %d, want 2", len(doc.Context))
	}
	ctxMap, ok := doc.Context[1].(Node)
	if !ok {
		t.Fatalf("second context entry is %T", doc.Context[1])
	}
	if base := ctxMap["@base"]; base != "https://example.org/annotator/manu/vid-9/" {
		t.Fatalf("@base = %v", base)
	}

	// 2 concepts + 1 relation + 1 description + localVocabulary
	if len(doc.Graph) != 5 {
		t.Fatalf("graph nodes = %d, want 5", len(doc.Graph))
	}

	byID := map[string]Node{}
	for _, n := range doc.Graph {
		byID[n["id"].(string)] = n
	}

	concept := byID["concept_graph"]
	if concept == nil || concept["type"] != "skos:Concept" {
		t.Fatalf("concept_graph node missing or mistyped: %v", concept)
	}
	pref := concept["skos:prefLabel"].(Node)
	if pref["@value"] != "graph" || pref["@language"] != "en" {
		t.Fatalf("prefLabel = %v", pref)
	}
	alts := concept["skos:altLabel"].([]Node)
	if len(alts) != 1 || alts[0]["@value"] != "network" {
		t.Fatalf("altLabel = %v", alts)
	}
	if _, hasAlt := byID["concept_node"]["skos:altLabel"]; hasAlt {
		t.Fatalf("concept without synonyms must not carry altLabel")
	}

	rel := byID["annotation_1"]
	if rel["motivation"] != "edu:linkingPrerequisite" {
		t.Fatalf("relation motivation = %v", rel["motivation"])
	}
	if body := rel["body"].(Node); body["id"] != "concept_node" {
		t.Fatalf("relation body = %v", body)
	}
	target := rel["target"].(Node)
	if target["id"] != "concept_graph" || target["edu:hasTime"] != "00:01:00" {
		t.Fatalf("relation target = %v", target)
	}
	if rel["edu:hasWeight"] != "Strong" {
		t.Fatalf("weight = %v", rel["edu:hasWeight"])
	}

	desc := byID["annotation_2"]
	if desc["motivation"] != "describing" || desc["edu:descriptionType"] != "Definition" {
		t.Fatalf("description node = %v", desc)
	}

	vocab := byID["localVocabulary"]
	members := vocab["skos:member"].([]Node)
	if len(members) != 2 {
		t.Fatalf("vocabulary members = %d, want 2", len(members))
	}

	// the document must survive a marshal round
	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestJSONLDEmptySnapshot(t *testing.T) {
	doc := JSONLD(types.AnnotationSnapshot{ID: "vid-0", Language: "en"}, "https://example.org/a")
	if len(doc.Graph) != 1 {
		t.Fatalf("graph nodes = %d, want just the vocabulary collection", len(doc.Graph))
	}
	if doc.Graph[0]["id"] != "localVocabulary" {
		t.Fatalf("node = %v", doc.Graph[0])
	}
}
