package controller

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/report"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GradeController is the instructor view of attempts: listing, grading,
// statistics and export.
type GradeController struct {
	Service *service.AttemptService
}

func NewGradeController(svc *service.AttemptService) *GradeController {
	return &GradeController{Service: svc}
}

func bindFilter(ctx *gin.Context) (report.Filter, bool) {
	var f report.Filter
	if err := ctx.ShouldBindQuery(&f); err != nil {
		util.BadRequest(ctx, err.Error())
		return f, false
	}
	return f, true
}

// @Summary 作答列表
// @Tags 阅卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param status query string false "IN_PROGRESS / SUBMITTED / GRADED"
// @Param result query string false "passed / failed / pending"
// @Param search query string false "按邮箱或姓名搜索"
// @Success 200 {object} util.Response{data=[]model.AssessmentAttempt}
// @Router /api/teacher/assessments/{id}/attempts [get]
func (c *GradeController) List(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}

	list, err := c.Service.ListForAssessment(ctx.Request.Context(), id, filter)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary 作答详情
// @Tags 阅卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param attemptId path string true "作答ID"
// @Success 200 {object} util.Response{data=model.AssessmentAttempt}
// @Router /api/teacher/assessments/{id}/attempts/{attemptId} [get]
func (c *GradeController) Get(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Service.Get(ctx.Request.Context(), id, ctx.Param("attemptId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 人工评分
// @Tags 阅卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param attemptId path string true "作答ID"
// @Param body body model.GradeAttemptRequest true "评分"
// @Success 200 {object} util.Response{data=model.AssessmentAttempt}
// @Failure 400 {object} util.Response "grade_out_of_range / grading_incomplete"
// @Failure 409 {object} util.Response "invalid_state"
// @Router /api/teacher/assessments/{id}/attempts/{attemptId}/grade [post]
func (c *GradeController) Grade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	var req model.GradeAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.Grade(ctx.Request.Context(), user.UserID, id, ctx.Param("attemptId"), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 重新评分
// @Description 仅限已评分的作答，旧值写入审计记录
// @Tags 阅卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param attemptId path string true "作答ID"
// @Param body body model.RegradeAttemptRequest true "评分及原因"
// @Success 200 {object} util.Response{data=model.AssessmentAttempt}
// @Failure 409 {object} util.Response "invalid_state"
// @Router /api/teacher/assessments/{id}/attempts/{attemptId}/regrade [post]
func (c *GradeController) Regrade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	var req model.RegradeAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.Regrade(ctx.Request.Context(), user.UserID, id, ctx.Param("attemptId"), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 评分审计记录
// @Tags 阅卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param attemptId path string true "作答ID"
// @Success 200 {object} util.Response{data=[]model.GradeAudit}
// @Router /api/teacher/assessments/{id}/attempts/{attemptId}/audit [get]
func (c *GradeController) Audit(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}

	audits, err := c.Service.Audits(ctx.Request.Context(), id, ctx.Param("attemptId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, audits)
}

// @Summary 测评统计
// @Tags 阅卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param status query string false "IN_PROGRESS / SUBMITTED / GRADED"
// @Param result query string false "passed / failed / pending"
// @Param search query string false "按邮箱或姓名搜索"
// @Success 200 {object} util.Response{data=report.Statistics}
// @Router /api/teacher/assessments/{id}/statistics [get]
func (c *GradeController) Statistics(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}

	st, err := c.Service.Statistics(ctx.Request.Context(), id, filter)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// @Summary 导出作答 CSV
// @Tags 阅卷
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param status query string false "IN_PROGRESS / SUBMITTED / GRADED"
// @Param result query string false "passed / failed / pending"
// @Param search query string false "按邮箱或姓名搜索"
// @Success 200 {file} file
// @Router /api/teacher/assessments/{id}/attempts/export [get]
func (c *GradeController) Export(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := c.Service.ExportCSV(ctx.Request.Context(), id, filter, &buf); err != nil {
		util.Fail(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="assessment-%d-attempts.csv"`, id))
	ctx.Data(http.StatusOK, util.MimeCSV+"; charset=utf-8", buf.Bytes())
}

// @Summary 归档导出
// @Description 生成 CSV 并写入存储（local / minio）
// @Tags 阅卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 201 {object} util.Response{data=model.ExportArchive}
// @Router /api/teacher/assessments/{id}/attempts/export/archive [post]
func (c *GradeController) ArchiveExport(ctx *gin.Context) {
	id, ok := util.UintParam(ctx, "id")
	if !ok {
		return
	}
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}

	archive, err := c.Service.ArchiveExport(ctx.Request.Context(), id, filter)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, archive)
}
