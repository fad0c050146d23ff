package export

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lexivid/annotator-backend/internal/clients/neo4jdb"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/types"
)

// ProjectSnapshot mirrors the snapshot into Neo4j: one Concept node per
// vocabulary entry scoped by video, PREREQUISITE_OF edges carrying weight
// and anchor, and SYNONYM_OF edges within each clique. The projection is
// idempotent and replaces the previous edges for the same video/annotator.
func ProjectSnapshot(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, snap types.AnnotationSnapshot) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodes := make([]map[string]any, 0, len(snap.ConceptVocabulary))
	syns := make([]map[string]any, 0)
	for name, list := range snap.ConceptVocabulary {
		nodes = append(nodes, map[string]any{
			"video_id":  snap.ID,
			"name":      name,
			"synced_at": now,
		})
		for _, s := range list {
			// one direction suffices, the stored map is symmetric
			if s > name {
				syns = append(syns, map[string]any{
					"video_id": snap.ID,
					"a":        name,
					"b":        s,
				})
			}
		}
	}

	rels := make([]map[string]any, 0, len(snap.Relations))
	for _, r := range snap.Relations {
		rels = append(rels, map[string]any{
			"video_id":  snap.ID,
			"from":      r.Prerequisite,
			"to":        r.Target,
			"weight":    string(r.Weight),
			"time":      r.Time,
			"sent_id":   int64(r.SentID),
			"word_id":   int64(r.WordID),
			"annotator": snap.Annotator,
			"synced_at": now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Schema init is best-effort; restricted users may not be allowed to.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT concept_video_name_unique IF NOT EXISTS FOR (c:Concept) REQUIRE (c.video_id, c.name) IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (a:Concept {video_id: $video_id})-[e:PREREQUISITE_OF {annotator: $annotator}]->(:Concept)
DELETE e
`, map[string]any{"video_id": snap.ID, "annotator": snap.Annotator})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Concept {video_id: n.video_id, name: n.name})
SET c.synced_at = n.synced_at
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Concept {video_id: r.video_id, name: r.from})
MATCH (b:Concept {video_id: r.video_id, name: r.to})
MERGE (a)-[e:PREREQUISITE_OF {annotator: r.annotator, time: r.time}]->(b)
SET e.weight = r.weight,
    e.sent_id = r.sent_id,
    e.word_id = r.word_id,
    e.synced_at = r.synced_at
`, map[string]any{"rels": rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(syns) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $syns AS s
MATCH (a:Concept {video_id: s.video_id, name: s.a})
MATCH (b:Concept {video_id: s.video_id, name: s.b})
MERGE (a)-[:SYNONYM_OF]->(b)
`, map[string]any{"syns": syns})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil && log != nil {
		log.Warn("neo4j projection failed", "error", err, "video_id", snap.ID)
	}
	return err
}
