package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/domain"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/entity"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/usecase"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/pkg/response"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/pkg/validate"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/study"
	"github.com/sirupsen/logrus"
)

type (
	StudyHandler interface {
		GenerateCards(ctx *fiber.Ctx) error
		RecordSession(ctx *fiber.Ctx) error
		GradeSession(ctx *fiber.Ctx) error
		GetProgress(ctx *fiber.Ctx) error
		GetRecommendation(ctx *fiber.Ctx) error
		GetSessionHistory(ctx *fiber.Ctx) error
	}

	studyHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.StudyUsecase
	}
)

func NewStudyHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.StudyUsecase) StudyHandler {
	return &studyHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

// GET /study/cards/generate?difficulty=easy|medium|hard|expert&count=5&topic=cardio&include_answer=false&use_ai=true
func (h *studyHandler) GenerateCards(ctx *fiber.Ctx) error {
	count := 1
	if v := strings.TrimSpace(ctx.Query("count")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			count = n
		}
	}

	includeAnswer := false
	if v := strings.TrimSpace(ctx.Query("include_answer")); v != "" {
		includeAnswer = (v == "1" || strings.EqualFold(v, "true"))
	}

	useAI := true
	if v := strings.TrimSpace(ctx.Query("use_ai")); v != "" {
		useAI = (v == "1" || strings.EqualFold(v, "true"))
	}

	topic := strings.TrimSpace(ctx.Query("topic"))

	difficulty := study.TierEasy
	if d := strings.TrimSpace(ctx.Query("difficulty")); d != "" {
		difficulty = study.Tier(strings.ToLower(d))
		if !difficulty.Valid() {
			return response.NewFailed(domain.STUDY_CARDS_GENERATE_FAILED, fiber.NewError(fiber.StatusBadRequest, "invalid difficulty"), h.logger).Send(ctx)
		}
	}

	cards, err := h.usecase.GenerateCards(ctx.UserContext(), difficulty, count, topic, includeAnswer, useAI)
	if err != nil {
		return response.NewFailed(domain.STUDY_CARDS_GENERATE_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_CARDS_GENERATE_SUCCESS, cards, nil).Send(ctx)
}

// POST /study/sessions
func (h *studyHandler) RecordSession(ctx *fiber.Ctx) error {
	var req entity.RecordSessionRequest

	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.STUDY_SESSION_RECORD_FAILED, err, h.logger).Send(ctx)
	}

	progress, err := h.usecase.RecordSession(ctx.UserContext(), req)
	if err != nil {
		return response.NewFailed(domain.STUDY_SESSION_RECORD_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_SESSION_RECORD_SUCCESS, progress, nil).Send(ctx)
}

// POST /study/sessions/grade
func (h *studyHandler) GradeSession(ctx *fiber.Ctx) error {
	var req entity.GradeSessionRequest

	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.STUDY_SESSION_GRADE_FAILED, err, h.logger).Send(ctx)
	}

	result, err := h.usecase.GradeSession(ctx.UserContext(), req)
	if err != nil {
		return response.NewFailed(domain.STUDY_SESSION_GRADE_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_SESSION_GRADE_SUCCESS, result, nil).Send(ctx)
}

// GET /study/progress/:learner_id
func (h *studyHandler) GetProgress(ctx *fiber.Ctx) error {
	learnerID := ctx.Params("learner_id")
	if learnerID == "" {
		return response.NewFailed(domain.STUDY_PROGRESS_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, "learner_id is required"), h.logger).Send(ctx)
	}

	progress, err := h.usecase.GetProgress(ctx.UserContext(), learnerID)
	if err != nil {
		return response.NewFailed(domain.STUDY_PROGRESS_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_PROGRESS_GET_SUCCESS, progress, nil).Send(ctx)
}

// GET /study/recommendation/:learner_id
func (h *studyHandler) GetRecommendation(ctx *fiber.Ctx) error {
	learnerID := ctx.Params("learner_id")
	if learnerID == "" {
		return response.NewFailed(domain.STUDY_RECOMMENDATION_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, "learner_id is required"), h.logger).Send(ctx)
	}

	recommendation, err := h.usecase.GetRecommendation(ctx.UserContext(), learnerID)
	if err != nil {
		return response.NewFailed(domain.STUDY_RECOMMENDATION_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_RECOMMENDATION_GET_SUCCESS, recommendation, nil).Send(ctx)
}

// GET /study/sessions/:learner_id?limit=20
func (h *studyHandler) GetSessionHistory(ctx *fiber.Ctx) error {
	learnerID := ctx.Params("learner_id")
	if learnerID == "" {
		return response.NewFailed(domain.STUDY_SESSION_HISTORY_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, "learner_id is required"), h.logger).Send(ctx)
	}

	limit := 20
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.usecase.GetSessionHistory(ctx.UserContext(), learnerID, limit)
	if err != nil {
		return response.NewFailed(domain.STUDY_SESSION_HISTORY_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.STUDY_SESSION_HISTORY_GET_SUCCESS, history, nil).Send(ctx)
}
