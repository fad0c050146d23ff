package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexivid/annotator-backend/internal/descriptions"
)

const definitionsListName = "definitions"

func (h *AnnotatorHandler) AddDefinition(c *gin.Context) {
	var req struct {
		VideoID     string `json:"video_id"`
		Annotator   string `json:"annotator"`
		Concept     string `json:"concept"`
		Start       string `json:"start"`
		End         string `json:"end"`
		StartSentID int    `json:"start_sent_id"`
		EndSentID   int    `json:"end_sent_id"`
		Type        string `json:"description_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	desc, err := doc.AddDescription(c.Request.Context(), req.Concept, req.Start, req.End, req.StartSentID, req.EndSentID, descriptions.Type(req.Type))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"definition": desc, "definitions": doc.Definitions()})
}

func (h *AnnotatorHandler) EditDefinition(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
		Start     string `json:"start"`
		End       string `json:"end"`
		Updated   struct {
			Start       string `json:"start"`
			End         string `json:"end"`
			StartSentID int    `json:"start_sent_id"`
			EndSentID   int    `json:"end_sent_id"`
			Type        string `json:"description_type"`
		} `json:"updated"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	upd := descriptions.Description{
		Start:           req.Updated.Start,
		End:             req.Updated.End,
		StartSentID:     req.Updated.StartSentID,
		EndSentID:       req.Updated.EndSentID,
		DescriptionType: descriptions.Type(req.Updated.Type),
	}
	if err := doc.EditDescription(c.Request.Context(), req.Concept, req.Start, req.End, upd); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"definitions": doc.Definitions()})
}

func (h *AnnotatorHandler) DeleteDefinition(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
		Concept   string `json:"concept"`
		Start     string `json:"start"`
		End       string `json:"end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.DeleteDescription(c.Request.Context(), req.Concept, req.Start, req.End); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"definitions": doc.Definitions()})
}

// GetDefinitions returns the description list sorted per the annotator's
// stored preference. An explicit sort query overrides and persists.
func (h *AnnotatorHandler) GetDefinitions(c *gin.Context) {
	videoID := c.Query("video_id")
	annotator := c.Query("annotator")
	doc, ok := h.doc(c, videoID, annotator)
	if !ok {
		return
	}

	pref := c.Query("sort")
	explicit := pref != ""
	if !explicit && h.sortPrefRepo != nil {
		stored, err := h.sortPrefRepo.Get(c.Request.Context(), nil, annotator, definitionsListName)
		if err != nil {
			h.log.Warn("sort preference load failed", "error", err, "annotator", annotator)
		} else {
			pref = stored
		}
	}

	list, applied := doc.SortDescriptions(pref)
	if explicit && h.sortPrefRepo != nil {
		if err := h.sortPrefRepo.Set(c.Request.Context(), nil, annotator, definitionsListName, applied); err != nil {
			h.log.Warn("sort preference save failed", "error", err, "annotator", annotator)
		}
	}
	RespondOK(c, gin.H{"definitions": list, "sort": applied})
}
