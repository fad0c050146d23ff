package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexivid/annotator-backend/internal/clients/lemmatizer"
	"github.com/lexivid/annotator-backend/internal/descriptions"
	"github.com/lexivid/annotator-backend/internal/document"
	"github.com/lexivid/annotator-backend/internal/export"
	"github.com/lexivid/annotator-backend/internal/graph"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/repos"
	"github.com/lexivid/annotator-backend/internal/transcript"
	"github.com/lexivid/annotator-backend/internal/types"
	"github.com/lexivid/annotator-backend/internal/vocabulary"
)

type AnnotatorHandler struct {
	log          *logger.Logger
	manager      *document.Manager
	lemmatizer   lemmatizer.Client
	graphRepo    repos.AnnotationGraphRepo
	sortPrefRepo repos.SortPreferenceRepo
	exportBase   string
}

func NewAnnotatorHandler(
	log *logger.Logger,
	manager *document.Manager,
	lem lemmatizer.Client,
	graphRepo repos.AnnotationGraphRepo,
	sortPrefRepo repos.SortPreferenceRepo,
	exportBase string,
) *AnnotatorHandler {
	return &AnnotatorHandler{
		log:          log.With("handler", "AnnotatorHandler"),
		manager:      manager,
		lemmatizer:   lem,
		graphRepo:    graphRepo,
		sortPrefRepo: sortPrefRepo,
		exportBase:   exportBase,
	}
}

// respondDomainError translates domain sentinel errors into HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	var inUse *document.ConceptInUseError
	switch {
	case errors.As(err, &inUse):
		RespondError(c, http.StatusConflict, "concept_in_use", err)
	case errors.Is(err, document.ErrNotOpen):
		RespondError(c, http.StatusNotFound, "document_not_open", err)
	case errors.Is(err, document.ErrUnknownConcept),
		errors.Is(err, vocabulary.ErrNotAConcept),
		errors.Is(err, graph.ErrUnknownConcept):
		RespondError(c, http.StatusNotFound, "unknown_concept", err)
	case errors.Is(err, graph.ErrNotFound),
		errors.Is(err, descriptions.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, vocabulary.ErrDuplicateConcept),
		errors.Is(err, vocabulary.ErrAlreadySynonym),
		errors.Is(err, graph.ErrDuplicateEdge):
		RespondError(c, http.StatusConflict, "duplicate", err)
	case errors.Is(err, graph.ErrCycle):
		RespondError(c, http.StatusConflict, "cycle", err)
	case errors.Is(err, graph.ErrSelfLoop),
		errors.Is(err, graph.ErrEmptyConcept),
		errors.Is(err, vocabulary.ErrEmptyConcept),
		errors.Is(err, vocabulary.ErrNotInSynonymSet),
		errors.Is(err, descriptions.ErrEmptyConcept),
		errors.Is(err, descriptions.ErrMissingType),
		errors.Is(err, document.ErrEmptyTerm):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, lemmatizer.ErrNotAnalyzable):
		RespondError(c, http.StatusUnprocessableEntity, "not_analyzable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

// doc resolves the open document addressed by the request body fields.
func (h *AnnotatorHandler) doc(c *gin.Context, videoID, annotator string) (*document.Document, bool) {
	d, err := h.manager.Get(videoID, annotator)
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	return d, true
}

func (h *AnnotatorHandler) OpenDocument(c *gin.Context) {
	var req struct {
		VideoID    string                    `json:"video_id"`
		Annotator  string                    `json:"annotator"`
		Language   string                    `json:"language"`
		Transcript []transcript.FeedSentence `json:"transcript"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.VideoID == "" || req.Annotator == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("video_id and annotator are required"))
		return
	}
	doc, err := h.manager.Open(c.Request.Context(), req.VideoID, req.Annotator, req.Language, req.Transcript)
	if err != nil {
		h.log.Error("OpenDocument failed", "error", err, "video_id", req.VideoID)
		RespondError(c, http.StatusBadRequest, "open_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"annotations": doc.Snapshot(),
		"concepts":    doc.Concepts(),
	})
}

func (h *AnnotatorHandler) CloseDocument(c *gin.Context) {
	var req struct {
		VideoID   string `json:"video_id"`
		Annotator string `json:"annotator"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.manager.Close(req.VideoID, req.Annotator)
	RespondOK(c, gin.H{"done": true})
}

func (h *AnnotatorHandler) LemmatizeTerm(c *gin.Context) {
	var req struct {
		Lang    string `json:"lang"`
		Concept string `json:"concept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	concept, err := h.lemmatizer.LemmatizeTerm(c.Request.Context(), req.Lang, req.Concept)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	tokens := make([]gin.H, len(concept.Tokens))
	for i, t := range concept.Tokens {
		tokens[i] = gin.H{"word": t.Word, "lemma": t.Lemma}
	}
	RespondOK(c, gin.H{
		"phrase":    concept.LemmaPhrase(),
		"tokens":    tokens,
		"head_indx": concept.HeadIndex,
	})
}

func (h *AnnotatorHandler) SetCompleted(c *gin.Context) {
	var req struct {
		VideoID     string `json:"video_id"`
		Annotator   string `json:"annotator"`
		IsCompleted bool   `json:"is_completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	doc, ok := h.doc(c, req.VideoID, req.Annotator)
	if !ok {
		return
	}
	if err := doc.SetCompleted(c.Request.Context(), req.IsCompleted); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"done": true})
}

// UploadGraph stores a full client-assembled snapshot, the bulk form the
// browser sends on explicit save.
func (h *AnnotatorHandler) UploadGraph(c *gin.Context) {
	var snap types.AnnotationSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if snap.ID == "" || snap.Annotator == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("id and annotator are required"))
		return
	}
	if _, err := h.graphRepo.Upsert(c.Request.Context(), nil, snap, snap.ID); err != nil {
		h.log.Error("UploadGraph failed", "error", err, "video_id", snap.ID)
		RespondError(c, http.StatusInternalServerError, "upload_failed", err)
		return
	}
	RespondOK(c, gin.H{"done": true})
}

// DownloadGraph renders the live document as a JSON-LD collection with the
// SKOS vocabulary embedded.
func (h *AnnotatorHandler) DownloadGraph(c *gin.Context) {
	videoID := c.Query("video_id")
	annotator := c.Query("annotator")
	doc, ok := h.doc(c, videoID, annotator)
	if !ok {
		return
	}
	RespondOK(c, export.JSONLD(doc.Snapshot(), h.exportBase))
}
