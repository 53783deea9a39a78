package controller

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary 创建测评
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.AssessmentInput true "测评设置"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response
// @Router /api/teacher/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.AssessmentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Create(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// @Summary 测评列表
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param include_archived query bool false "包含已归档"
// @Param mine query bool false "只看自己创建的"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	includeArchived := ctx.Query("include_archived") == "true"

	var creatorID uint
	if ctx.Query("mine") == "true" {
		if user := util.GetUserFromContext(ctx); user != nil {
			creatorID = user.UserID
		}
	}

	list, total, err := c.Service.List(ctx.Request.Context(), creatorID, includeArchived, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  list,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 测评详情（含答案）
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.AssessmentDetail}
// @Failure 404 {object} util.Response
// @Router /api/teacher/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.Service.Get(ctx.Request.Context(), id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary 更新测评设置
// @Description 已开始的作答保留开始时的快照
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body model.AssessmentInput true "测评设置"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response "assessment_archived"
// @Router /api/teacher/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	var req model.AssessmentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary 归档测评
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/archive [post]
func (c *AssessmentController) Archive(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.Archive(ctx.Request.Context(), id); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"archived": true})
}

// @Summary 添加题目
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body model.QuestionInput true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	var req model.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary 更新题目
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param questionId path string true "题目ID"
// @Param body body model.QuestionInput true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/teacher/assessments/{id}/questions/{questionId} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	var req model.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(ctx.Request.Context(), id, ctx.Param("questionId"), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary 删除题目
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions/{questionId} [delete]
func (c *AssessmentController) RemoveQuestion(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.RemoveQuestion(ctx.Request.Context(), id, ctx.Param("questionId")); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
