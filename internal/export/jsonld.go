// Package export serializes an annotation snapshot into interchange forms:
// a JSON-LD collection following the Web Annotation Data Model with SKOS
// concepts, and a Neo4j projection for graph-side consumers.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexivid/annotator-backend/internal/types"
)

const (
	eduNamespace = "https://teldh.github.io/edurell#"
	annoContext  = "http://www.w3.org/ns/anno.jsonld"
)

// Node is one entry of the @graph array.
type Node = map[string]any

// Collection is the JSON-LD document offered for download.
type Collection struct {
	Context []any  `json:"@context"`
	Graph   []Node `json:"@graph"`
}

func conceptURI(name string) string {
	return "concept_" + strings.ReplaceAll(name, " ", "_")
}

func langLiteral(value, lang string) Node {
	return Node{"@value": value, "@language": lang}
}

// JSONLD builds the downloadable document: one skos:Concept per vocabulary
// entry, one Annotation per prerequisite relation and per description, and a
// closing skos:Collection listing the local vocabulary.
func JSONLD(snap types.AnnotationSnapshot, baseURL string) Collection {
	lang := snap.Language

	names := make([]string, 0, len(snap.ConceptVocabulary))
	for name := range snap.ConceptVocabulary {
		names = append(names, name)
	}
	sort.Strings(names)

	graph := make([]Node, 0, len(names)+len(snap.Relations)+len(snap.Definitions)+1)
	for _, name := range names {
		node := Node{
			"id":             conceptURI(name),
			"type":           "skos:Concept",
			"skos:prefLabel": langLiteral(name, lang),
		}
		if syns := snap.ConceptVocabulary[name]; len(syns) > 0 {
			alts := make([]Node, len(syns))
			for i, s := range syns {
				alts[i] = langLiteral(s, lang)
			}
			node["skos:altLabel"] = alts
		}
		graph = append(graph, node)
	}

	seq := 0
	for _, r := range snap.Relations {
		seq++
		target := Node{
			"id":            conceptURI(r.Target),
			"edu:hasTime":   r.Time,
			"edu:hasSentID": r.SentID,
			"edu:hasWordID": r.WordID,
		}
		if r.XYWH != "" {
			target["edu:hasMediaFrag"] = r.XYWH
		}
		graph = append(graph, Node{
			"id":            fmt.Sprintf("annotation_%d", seq),
			"type":          "Annotation",
			"motivation":    "edu:linkingPrerequisite",
			"body":          Node{"id": conceptURI(r.Prerequisite)},
			"target":        target,
			"edu:hasWeight": string(r.Weight),
		})
	}

	for _, d := range snap.Definitions {
		seq++
		graph = append(graph, Node{
			"id":         fmt.Sprintf("annotation_%d", seq),
			"type":       "Annotation",
			"motivation": "describing",
			"body":       Node{"id": conceptURI(d.Concept)},
			"target": Node{
				"edu:hasStartTime":   d.Start,
				"edu:hasEndTime":     d.End,
				"edu:hasStartSentID": d.StartSentID,
				"edu:hasEndSentID":   d.EndSentID,
			},
			"edu:descriptionType": string(d.DescriptionType),
		})
	}

	members := make([]Node, len(names))
	for i, name := range names {
		members[i] = Node{"id": conceptURI(name)}
	}
	graph = append(graph, Node{
		"id":          "localVocabulary",
		"type":        "skos:Collection",
		"skos:member": members,
	})

	base := strings.TrimRight(baseURL, "/") + "/" + snap.ID + "/"
	return Collection{
		Context: []any{
			annoContext,
			Node{"edu": eduNamespace, "@base": base, "@version": 1.1},
		},
		Graph: graph,
	}
}
