package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/handler"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/middleware"
)

func SetupStudyRoute(api *fiber.App, handler handler.StudyHandler, m *middleware.Middleware) {
	router := api.Group("/study")
	{
		router.Get("/cards/generate", handler.GenerateCards)
		router.Post("/sessions", handler.RecordSession)
		router.Post("/sessions/grade", handler.GradeSession)
		router.Get("/sessions/:learner_id", handler.GetSessionHistory)
		router.Get("/progress/:learner_id", handler.GetProgress)
		router.Get("/recommendation/:learner_id", handler.GetRecommendation)
	}
}
