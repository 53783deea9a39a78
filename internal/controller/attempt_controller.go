package controller

import (
	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

// AttemptController serves the learner routes. Every route acts on the
// caller's own attempts only.
type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// @Summary 开始作答
// @Tags 学生作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 201 {object} util.Response{data=model.StartAttemptResult}
// @Failure 409 {object} util.Response "already_in_progress"
// @Failure 403 {object} util.Response "attempts_exhausted"
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	res, err := c.Service.Start(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, res)
}

// @Summary 获取本人作答
// @Tags 学生作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Success 200 {object} util.Response{data=model.LearnerAttempt}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{attemptId} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.GetForLearner(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 保存草稿答案
// @Tags 学生作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Param body body model.SaveDraftRequest true "答案"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response "invalid_answer_shape"
// @Router /api/attempts/{attemptId}/answers [put]
func (c *AttemptController) SaveDraft(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.SaveDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SaveDraft(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"), req.Answers); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// @Summary 提交作答
// @Description 重复提交返回 409 already_submitted，data 为已保存的作答
// @Tags 学生作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Param body body model.SubmitAttemptRequest true "答案"
// @Success 200 {object} util.Response{data=model.LearnerAttempt}
// @Failure 409 {object} util.Response{data=model.LearnerAttempt} "already_submitted"
// @Failure 422 {object} util.Response "invalid_answer_shape"
// @Router /api/attempts/{attemptId}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.Submit(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"), req.Answers, req.Forced)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadySubmitted) && res != nil {
			util.FailWithData(ctx, err, res)
			return
		}
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 我的作答记录
// @Tags 学生作答
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.AssessmentAttempt}
// @Router /api/me/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Service.ListForUser(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, list)
}
