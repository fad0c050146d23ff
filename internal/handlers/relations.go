package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexivid/annotator-backend/internal/graph"
)

const relationsListName = "relations"

func (h *AnnotatorHandler) AddRelation(c *gin.Context) {
	var req struct {
		VideoID   string         `json:"video_id"`
		Annotator string         `json:"annotator"`
		Relation  graph.Relation `json:"relation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.AddRelation(c.Request.Context(), req.Relation); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"relations": doc.Relations()})
}

func (h *AnnotatorHandler) ReplaceRelation(c *gin.Context) {
	var req struct {
		VideoID   string         `json:"video_id"`
		Annotator string         `json:"annotator"`
		Index     int            `json:"index"`
		Relation  graph.Relation `json:"relation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.ReplaceRelation(c.Request.Context(), req.Index, req.Relation); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"relations": doc.Relations()})
}

func (h *AnnotatorHandler) DeleteRelation(c *gin.Context) {
	var req struct {
		VideoID      string `json:"video_id"`
		Annotator    string `json:"annotator"`
		Prerequisite string `json:"prerequisite"`
		Target       string `json:"target"`
		Weight       string `json:"weight"`
		Time         string `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.DeleteRelation(c.Request.Context(), req.Prerequisite, req.Target, graph.Weight(req.Weight), req.Time); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"relations": doc.Relations()})
}

func (h *AnnotatorHandler) ChangeWeight(c *gin.Context) {
	var req struct {
		VideoID      string `json:"video_id"`
		Annotator    string `json:"annotator"`
		Prerequisite string `json:"prerequisite"`
		Target       string `json:"target"`
		Time         string `json:"time"`
		Weight       string `json:"weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.ChangeWeight(c.Request.Context(), req.Prerequisite, req.Target, req.Time, graph.Weight(req.Weight)); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"relations": doc.Relations()})
}

// GetRelations returns the relation list sorted per the annotator's stored
// preference, or by the column explicitly requested.
func (h *AnnotatorHandler) GetRelations(c *gin.Context) {
	videoID := c.Query("video_id")
	annotator := c.Query("annotator")
	doc, ok := h.doc(c, videoID, annotator)
	if !ok {
		return
	}

	pref := c.Query("sort")
	explicit := pref != ""
	if !explicit && h.sortPrefRepo != nil {
		stored, err := h.sortPrefRepo.Get(c.Request.Context(), nil, annotator, relationsListName)
		if err != nil {
			h.log.Warn("sort preference load failed", "error", err, "annotator", annotator)
		} else {
			pref = stored
		}
	}

	key, ascending := decodeRelationSort(pref)
	if explicit && h.sortPrefRepo != nil {
		if err := h.sortPrefRepo.Set(c.Request.Context(), nil, annotator, relationsListName, pref); err != nil {
			h.log.Warn("sort preference save failed", "error", err, "annotator", annotator)
		}
	}
	RespondOK(c, gin.H{"relations": doc.SortRelations(key, ascending)})
}

// decodeRelationSort parses prefs of the form "<column><A|D>", falling back
// to target concept ascending.
func decodeRelationSort(pref string) (graph.SortKey, bool) {
	if len(pref) < 2 {
		return graph.SortByConcept, true
	}
	ascending := pref[len(pref)-1] != 'D'
	switch graph.SortKey(pref[:len(pref)-1]) {
	case graph.SortByConcept:
		return graph.SortByConcept, ascending
	case graph.SortByPrerequisite:
		return graph.SortByPrerequisite, ascending
	case graph.SortByWeight:
		return graph.SortByWeight, ascending
	case graph.SortByStartTime:
		return graph.SortByStartTime, ascending
	default:
		return graph.SortByConcept, true
	}
}
