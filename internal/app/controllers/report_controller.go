package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeline-http-service/internal/domain/models"
	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
)

// 急救电话。固定值，不进主数据。
const ambulanceNumber = "119"

// InterfaceReportController 定义事故报告控制器接口
type InterfaceReportController interface {
	CreateReport()
	GetReport()
	RestartReport()
	DiscardReport()
	SetTriage()
	SetLocation()
	SetAccident()
	SetVictim()
	Review()
	ConfirmEmergencyStep()
	GetPreview()
	MarkSent()
	MarkCopied()
}

// ReportController 处理引导式事故报告的请求。
// 报告在锁屏状态下也要能发起，因此全部为公开接口。
type ReportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReportController 创建一个新的事故报告控制器
func NewReportController(ctx *gin.Context, container *container.ServiceContainer) *ReportController {
	return &ReportController{
		Ctx:       ctx,
		Container: container,
	}
}

func (c *ReportController) workflow() services.InterfaceWorkflowService {
	return c.Container.GetService("workflow").(services.InterfaceWorkflowService)
}

// failWorkflow 把流程层错误映射到统一响应
func (c *ReportController) failWorkflow(err error) {
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		response.NotFound(c.Ctx, code.ErrReportNotFound)
	case errors.Is(err, services.ErrTriageIncomplete),
		errors.Is(err, services.ErrLocationUnresolved),
		errors.Is(err, services.ErrVictimUnresolved),
		errors.Is(err, services.ErrReportFinalized),
		errors.Is(err, services.ErrStepUnknown):
		response.FailWithMessage(c.Ctx, code.ErrReportStateInvalid, err.Error(), nil)
	case errors.Is(err, services.ErrLocationNotFound):
		response.NotFound(c.Ctx, code.ErrLocationNotFound)
	case errors.Is(err, services.ErrStaffNotFound):
		response.NotFound(c.Ctx, code.ErrStaffNotFound)
	case errors.Is(err, services.ErrSituationNotFound):
		response.NotFound(c.Ctx, code.ErrSituationNotFound)
	default:
		response.ServerError(c.Ctx)
	}
}

// CreateReport 新建报告会话
// @Summary      新建报告会话
// @Tags         Report
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Router       /reports [post]
func (c *ReportController) CreateReport() {
	session := c.workflow().CreateSession()
	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    code.ErrSuccess,
		"message": code.GetMessage(code.ErrSuccess),
		"data":    session,
	})
}

// GetReport 获取报告会话状态
// @Summary      获取报告会话
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /reports/{id} [get]
func (c *ReportController) GetReport() {
	session, err := c.workflow().GetSession(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// RestartReport 重开报告会话
// @Summary      重开报告会话
// @Description  丢弃全部进度回到初始状态；紧急引导的一次性触发标志同时清零
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /reports/{id}/restart [post]
func (c *ReportController) RestartReport() {
	session, err := c.workflow().RestartSession(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// DiscardReport 放弃报告会话
// @Summary      放弃报告会话
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /reports/{id} [delete]
func (c *ReportController) DiscardReport() {
	c.workflow().DiscardSession(c.Ctx.Param("id"))
	response.Success(c.Ctx, nil)
}

// SetTriage 记录容态确认
// @Summary      记录容态确认
// @Description  意识与呼吸双双为"无"首次成立时启动紧急引导序列（每会话一次）
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path string true "会话ID"
// @Param        request body models.Triage true "容态确认"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /reports/{id}/triage [put]
func (c *ReportController) SetTriage() {
	var triage models.Triage
	if err := c.Ctx.ShouldBindJSON(&triage); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	session, err := c.workflow().SetTriage(c.Ctx.Param("id"), triage)
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// SetLocation 确定发生场所
// @Summary      确定发生场所
// @Description  名簿匹配、手动输入、明确不明三者择一；进入此步前容态必须已确认
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path string true "会话ID"
// @Param        request body models.LocationChoice true "场所选择"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/location [put]
func (c *ReportController) SetLocation() {
	var choice models.LocationChoice
	if err := c.Ctx.ShouldBindJSON(&choice); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	session, err := c.workflow().SetLocation(c.Ctx.Param("id"), choice)
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// SetAccidentRequest 表示选择事故类型的请求体
type SetAccidentRequest struct {
	SituationID string   `json:"situation_id"`
	BodyPartIDs []string `json:"body_part_ids"`
	Note        string   `json:"note"`
}

// SetAccident 选择事故类型・受伤部位・备注
// @Summary      选择事故类型
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path string true "会话ID"
// @Param        request body SetAccidentRequest true "事故类型选择"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /reports/{id}/accident [put]
func (c *ReportController) SetAccident() {
	var req SetAccidentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	session, err := c.workflow().SetAccident(c.Ctx.Param("id"), req.SituationID, req.BodyPartIDs, req.Note)
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// SetVictim 确定被灾者
// @Summary      确定被灾者
// @Description  名簿匹配与明确不明二择一
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path string true "会话ID"
// @Param        request body models.VictimChoice true "被灾者选择"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/victim [put]
func (c *ReportController) SetVictim() {
	var choice models.VictimChoice
	if err := c.Ctx.ShouldBindJSON(&choice); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	session, err := c.workflow().SetVictim(c.Ctx.Param("id"), choice)
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// Review 进入确认画面
// @Summary      进入确认画面
// @Description  未定的场所/被灾者按"明确不明"补齐后进入确认状态
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/review [post]
func (c *ReportController) Review() {
	session, err := c.workflow().SkipToReview(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// ConfirmEmergencyStepRequest 表示确认紧急引导步骤的请求体
type ConfirmEmergencyStepRequest struct {
	Step string `json:"step" binding:"required"`
	Done *bool  `json:"done" binding:"required"`
}

// ConfirmEmergencyStep 确认紧急引导序列的当前步骤
// @Summary      确认紧急引导步骤
// @Description  按固定顺序逐步确认（完成或跳过）；重复确认已过步骤为无操作
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path string true "会话ID"
// @Param        request body ConfirmEmergencyStepRequest true "步骤确认"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/emergency-step [post]
func (c *ReportController) ConfirmEmergencyStep() {
	var req ConfirmEmergencyStepRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || req.Done == nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	session, err := c.workflow().ConfirmEmergencyStep(c.Ctx.Param("id"), req.Step, *req.Done)
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// GetPreview 生成通知预览与外部客户端URI
// @Summary      生成通知预览
// @Description  按事故类型模板渲染主题和正文，并组装mailto/sms/tel URI交给外部客户端
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /reports/{id}/preview [get]
func (c *ReportController) GetPreview() {
	workflow := c.workflow()
	preview, err := workflow.BuildPreview(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"preview":  preview,
		"mail_uri": workflow.BuildMailURI(preview),
		"sms_uri":  workflow.BuildSMSURI(nil, preview.Body),
		"tel_uri":  workflow.BuildTelURI(ambulanceNumber),
	})
}

// MarkSent 标记报告已交给外部客户端
// @Summary      标记报告已发出
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/sent [post]
func (c *ReportController) MarkSent() {
	session, err := c.workflow().MarkSent(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// MarkCopied 标记报告文本已复制
// @Summary      标记报告已复制
// @Tags         Report
// @Produce      json
// @Param        id path string true "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /reports/{id}/copied [post]
func (c *ReportController) MarkCopied() {
	session, err := c.workflow().MarkCopied(c.Ctx.Param("id"))
	if err != nil {
		c.failWorkflow(err)
		return
	}
	response.Success(c.Ctx, session)
}

// HandleReportFunc 返回一个处理事故报告请求的Gin处理函数
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReportController(ctx, container)

		switch method {
		case "createReport":
			controller.CreateReport()
		case "getReport":
			controller.GetReport()
		case "restartReport":
			controller.RestartReport()
		case "discardReport":
			controller.DiscardReport()
		case "setTriage":
			controller.SetTriage()
		case "setLocation":
			controller.SetLocation()
		case "setAccident":
			controller.SetAccident()
		case "setVictim":
			controller.SetVictim()
		case "review":
			controller.Review()
		case "confirmEmergencyStep":
			controller.ConfirmEmergencyStep()
		case "getPreview":
			controller.GetPreview()
		case "markSent":
			controller.MarkSent()
		case "markCopied":
			controller.MarkCopied()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
