package api

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/services"
)

// HealthChecker reports whether a backing store can serve requests.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	VocabularyService services.VocabularyService
	StudyService      services.StudyService
	ProgressService   services.ProgressService
	Health            HealthChecker
	Log               *logger.Logger

	validate *validator.Validate
}

func NewServer(vocabulary services.VocabularyService, study services.StudyService, progress services.ProgressService, health HealthChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		VocabularyService: vocabulary,
		StudyService:      study,
		ProgressService:   progress,
		Health:            health,
		Log:               log,
		validate:          newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
