package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/handler"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/middleware"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/repository"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/route"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/usecase"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/pkg/llm"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/pkg/validate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	Api       *fiber.App
	Config    *viper.Viper
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *validate.Validator
}

func Bootstrap(config *BootstrapConfig) {

	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	apiKey := ""
	model := ""
	baseURL := ""
	promptTemplate := ""
	if config.Config != nil {
		apiKey = config.Config.GetString("llm.api_key")
		model = config.Config.GetString("llm.model")
		baseURL = config.Config.GetString("llm.base_url")
		promptTemplate = config.Config.GetString("llm.prompt_template")
	}

	generator := llm.NewClient(apiKey, model, baseURL)
	studyRepo := repository.NewStudyRepository(config.DB)
	studyUsecase := usecase.NewStudyUsecase(usecase.StudyConfig{
		DB:             config.DB,
		LLM:            generator,
		PromptTemplate: promptTemplate,
		Repository:     studyRepo,
		Config:         config.Config,
		Log:            config.Log,
	})
	studyHandler := handler.NewStudyHandler(config.Validator, config.Log, studyUsecase)

	route.Setup(&route.RouteConfig{
		Api:          config.Api,
		Middleware:   mid,
		StudyHandler: studyHandler,
	})

}
