package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *AnnotatorHandler) AddConcept(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	res, err := doc.AddConcept(c.Request.Context(), req.Concept)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	occurrences := make([]gin.H, len(res.Spans))
	for i, span := range res.Spans {
		first, last := span.Tokens[0], span.Tokens[len(span.Tokens)-1]
		occurrences[i] = gin.H{
			"text":          span.Text,
			"start_sent_id": first.SentID,
			"start_word_id": first.WordID,
			"end_sent_id":   last.SentID,
			"end_word_id":   last.WordID,
			"start_time":    first.StartTime,
			"end_time":      last.EndTime,
		}
	}
	RespondOK(c, gin.H{
		"concept":     res.ID,
		"canonical":   res.Canonical,
		"occurrences": occurrences,
		"concepts":    doc.Concepts(),
	})
}

func (h *AnnotatorHandler) DeleteConcept(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.DeleteConcept(c.Request.Context(), req.Concept); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"done": true, "concepts": doc.Concepts()})
}

func (h *AnnotatorHandler) GetConceptVocabulary(c *gin.Context) {
	doc, ok := h.doc(c, c.Query("video_id"), c.Query("annotator"))
	if !ok {
		return
	}
	RespondOK(c, gin.H{"conceptVocabulary": doc.ConceptVocabulary()})
}

func (h *AnnotatorHandler) AddSynonym(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
		Synonym   string `json:"synonym"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.AddSynonym(c.Request.Context(), req.Concept, req.Synonym); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"conceptVocabulary": doc.ConceptVocabulary()})
}

func (h *AnnotatorHandler) RemoveSynonym(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
		Synonym   string `json:"synonym"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.RemoveSynonym(c.Request.Context(), req.Concept, req.Synonym); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"conceptVocabulary": doc.ConceptVocabulary()})
}

func (h *AnnotatorHandler) GetSynonymSet(c *gin.Context) {
	doc, ok := h.doc(c, c.Query("video_id"), c.Query("annotator"))
	if !ok {
		return
	}
	set, err := doc.SynonymSet(c.Query("concept"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"synonyms": set})
}
