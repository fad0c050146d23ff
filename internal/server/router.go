package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/lexivid/annotator-backend/internal/handlers"
)

type RouterConfig struct {
  AnnotatorHandler  *handlers.AnnotatorHandler
  ServiceName       string
  AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(otelgin.Middleware(cfg.ServiceName))

  // Cors
  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    }
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  annotator := router.Group("/annotator")
  {
    // document lifecycle
    annotator.POST("/open_document", cfg.AnnotatorHandler.OpenDocument)
    annotator.POST("/close_document", cfg.AnnotatorHandler.CloseDocument)
    annotator.POST("/lemmatize_term", cfg.AnnotatorHandler.LemmatizeTerm)
    annotator.POST("/set_completed", cfg.AnnotatorHandler.SetCompleted)
    annotator.POST("/upload_graph", cfg.AnnotatorHandler.UploadGraph)
    annotator.GET("/download_graph", cfg.AnnotatorHandler.DownloadGraph)
    // concepts and synonyms
    annotator.POST("/add_concept", cfg.AnnotatorHandler.AddConcept)
    annotator.POST("/delete_concept", cfg.AnnotatorHandler.DeleteConcept)
    annotator.GET("/get_concept_vocabulary", cfg.AnnotatorHandler.GetConceptVocabulary)
    annotator.GET("/get_synonym_set", cfg.AnnotatorHandler.GetSynonymSet)
    annotator.POST("/add_synonym", cfg.AnnotatorHandler.AddSynonym)
    annotator.POST("/remove_synonym", cfg.AnnotatorHandler.RemoveSynonym)
    // prerequisite relations
    annotator.GET("/get_relations", cfg.AnnotatorHandler.GetRelations)
    annotator.POST("/add_relation", cfg.AnnotatorHandler.AddRelation)
    annotator.POST("/replace_relation", cfg.AnnotatorHandler.ReplaceRelation)
    annotator.POST("/delete_relation", cfg.AnnotatorHandler.DeleteRelation)
    annotator.POST("/change_weight", cfg.AnnotatorHandler.ChangeWeight)
    // descriptions
    annotator.GET("/get_definitions", cfg.AnnotatorHandler.GetDefinitions)
    annotator.POST("/add_definition", cfg.AnnotatorHandler.AddDefinition)
    annotator.POST("/edit_definition", cfg.AnnotatorHandler.EditDefinition)
    annotator.POST("/delete_definition", cfg.AnnotatorHandler.DeleteDefinition)
  }

  return router
}
