package app

import (
	"strings"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/utils"
)

type Config struct {
	Mode          string
	Port          string
	AllowOrigins  []string
	ExportBaseURL string
	ServiceName   string
	Version       string
}

func LoadConfig(log *logger.Logger) Config {
	mode := utils.GetEnv("LOG_MODE", "development", log)
	port := utils.GetEnv("PORT", "8080", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)
	exportBase := utils.GetEnv("EXPORT_BASE_URL", "https://localhost/annotator/manu", log)
	serviceName := utils.GetEnv("SERVICE_NAME", "annotator-backend", log)
	version := utils.GetEnv("SERVICE_VERSION", "dev", log)

	var allowOrigins []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowOrigins = append(allowOrigins, o)
		}
	}

	return Config{
		Mode:          mode,
		Port:          port,
		AllowOrigins:  allowOrigins,
		ExportBaseURL: exportBase,
		ServiceName:   serviceName,
		Version:       version,
	}
}
