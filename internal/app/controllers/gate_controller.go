package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/error/code"
	"lifeline-http-service/internal/error/response"
)

// InterfaceGateController 定义门禁控制器接口
type InterfaceGateController interface {
	GetStatus()
	SetupPassword()
	Login()
	Logout()
	ChangePassword()
	Heartbeat()
}

// GateController 处理管理画面门禁相关的请求
type GateController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewGateController 创建一个新的门禁控制器
func NewGateController(ctx *gin.Context, container *container.ServiceContainer) *GateController {
	return &GateController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetStatus 获取门禁状态
// @Summary      获取门禁状态
// @Description  返回是否已设置管理密码，供前端决定进入首次设置还是登录流程
// @Tags         Gate
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /gate/status [get]
func (c *GateController) GetStatus() {
	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	response.Success(c.Ctx, gin.H{
		"password_set": gate.PasswordSet(),
	})
}

// SetupPasswordRequest 表示首次设置管理密码的请求体
type SetupPasswordRequest struct {
	Password string `json:"password" binding:"required"`
	Confirm  string `json:"confirm" binding:"required"`
}

// SetupPassword 首次设置管理密码
// @Summary      首次设置管理密码
// @Description  仅在尚未设置密码时可用，要求两次输入一致且不短于最小长度
// @Tags         Gate
// @Accept       json
// @Produce      json
// @Param        request body SetupPasswordRequest true "密码设置信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /gate/setup [post]
func (c *GateController) SetupPassword() {
	var req SetupPasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	if err := gate.SetInitialPassword(c.Ctx.Request.Context(), req.Password, req.Confirm); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordAlreadySet):
			response.Fail(c.Ctx, code.ErrPasswordAlreadySet, nil)
		case errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrPasswordMismatch):
			response.ParamError(c.Ctx, err.Error())
		default:
			response.FailWithMessage(c.Ctx, code.ErrStorage, "保存密码失败: "+err.Error(), nil)
		}
		return
	}
	response.Success(c.Ctx, nil)
}

// LoginRequest 表示解锁管理画面的请求体
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login 密码解锁管理画面
// @Summary      解锁管理画面
// @Description  密码指纹一致时签发管理令牌；连续失败达到上限后进入定时锁定，锁定期内一律拒绝
// @Tags         Gate
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "密码"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /gate/login [post]
func (c *GateController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	token, remaining, err := gate.AttemptLogin(req.Password)
	if err != nil {
		var lockedOut *services.LockedOutError
		switch {
		case errors.As(err, &lockedOut):
			response.LockedOut(c.Ctx, int(lockedOut.RetryAfter.Seconds()+0.5))
		case errors.Is(err, services.ErrPasswordNotSet):
			response.Fail(c.Ctx, code.ErrPasswordNotSet, nil)
		case errors.Is(err, services.ErrPasswordIncorrect):
			response.Fail(c.Ctx, code.ErrPasswordIncorrect, gin.H{
				"remaining_attempts": remaining,
			})
		default:
			response.ServerError(c.Ctx)
		}
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    code.ErrSuccess,
		"message": code.GetMessage(code.ErrSuccess),
		"data": gin.H{
			"token": token,
		},
	})
}

// Logout 显式上锁
// @Summary      上锁管理画面
// @Tags         Gate
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /gate/logout [post]
// @Security     BearerAuth
func (c *GateController) Logout() {
	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	gate.Logout()
	response.Success(c.Ctx, nil)
}

// ChangePasswordRequest 表示变更管理密码的请求体
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Confirm     string `json:"confirm" binding:"required"`
}

// ChangePassword 变更管理密码
// @Summary      变更管理密码
// @Description  需提供当前密码；新密码要求与首次设置相同
// @Tags         Gate
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "密码变更信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /gate/password [put]
// @Security     BearerAuth
func (c *GateController) ChangePassword() {
	var req ChangePasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	if err := gate.ChangePassword(c.Ctx.Request.Context(), req.OldPassword, req.Password, req.Confirm); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordIncorrect):
			response.Fail(c.Ctx, code.ErrPasswordIncorrect, nil)
		case errors.Is(err, services.ErrPasswordNotSet):
			response.Fail(c.Ctx, code.ErrPasswordNotSet, nil)
		case errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrPasswordMismatch):
			response.ParamError(c.Ctx, err.Error())
		default:
			response.FailWithMessage(c.Ctx, code.ErrStorage, "保存密码失败: "+err.Error(), nil)
		}
		return
	}
	response.Success(c.Ctx, nil)
}

// Heartbeat 刷新无操作计时
// @Summary      会话心跳
// @Description  前端在用户操作时调用，重置无操作自动上锁的计时
// @Tags         Gate
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /gate/heartbeat [post]
// @Security     BearerAuth
func (c *GateController) Heartbeat() {
	gate := c.Container.GetService("gate").(services.InterfaceGateService)
	gate.Touch()
	response.Success(c.Ctx, nil)
}

// HandleGateFunc 返回一个处理门禁请求的Gin处理函数
func HandleGateFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewGateController(ctx, container)

		switch method {
		case "getStatus":
			controller.GetStatus()
		case "setupPassword":
			controller.SetupPassword()
		case "login":
			controller.Login()
		case "logout":
			controller.Logout()
		case "changePassword":
			controller.ChangePassword()
		case "heartbeat":
			controller.Heartbeat()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}
