package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:                "成功",
	ErrUnknown:                "未知错误",
	ErrBind:                   "请求参数绑定错误",
	ErrValidation:             "请求参数验证错误",
	ErrTokenInvalid:           "无效的认证令牌",
	ErrTooManyRequests:        "请求频率过高",
	ErrEnvironmentUnsupported: "当前环境不支持该操作，请改用手动输入",

	// 门禁相关错误码
	ErrPasswordNotSet:     "尚未设置管理密码",
	ErrPasswordAlreadySet: "管理密码已设置",
	ErrPasswordIncorrect:  "密码错误",
	ErrLockedOut:          "连续失败次数过多，已暂时锁定",
	ErrSessionExpired:     "长时间无操作，已自动上锁，请重新登录",

	// 职员相关错误码
	ErrStaffNotFound:     "职员不存在",
	ErrStaffAlreadyExist: "相同的职员ID已存在",

	// 会社・场所相关错误码
	ErrCompanyNotFound:   "会社不存在",
	ErrLocationNotFound:  "场所不存在",
	ErrSituationNotFound: "事故类型不存在",
	ErrBodyPartNotFound:  "受伤部位不存在",

	// 报告流程相关错误码
	ErrReportNotFound:     "报告会话不存在",
	ErrReportStateInvalid: "当前状态不允许该操作",

	// 存储相关错误码
	ErrStorage:       "存储读写失败",
	ErrInvalidFormat: "数据格式无效",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:                StatusOK,
	ErrUnknown:                StatusInternalServerError,
	ErrBind:                   StatusBadRequest,
	ErrValidation:             StatusBadRequest,
	ErrTokenInvalid:           StatusUnauthorized,
	ErrTooManyRequests:        StatusTooManyRequests,
	ErrEnvironmentUnsupported: StatusServiceUnavailable,

	// 门禁相关错误码
	ErrPasswordNotSet:     StatusBadRequest,
	ErrPasswordAlreadySet: StatusBadRequest,
	ErrPasswordIncorrect:  StatusUnauthorized,
	ErrLockedOut:          StatusForbidden,
	ErrSessionExpired:     StatusUnauthorized,

	// 职员相关错误码
	ErrStaffNotFound:     StatusNotFound,
	ErrStaffAlreadyExist: StatusBadRequest,

	// 会社・场所相关错误码
	ErrCompanyNotFound:   StatusNotFound,
	ErrLocationNotFound:  StatusNotFound,
	ErrSituationNotFound: StatusNotFound,
	ErrBodyPartNotFound:  StatusNotFound,

	// 报告流程相关错误码
	ErrReportNotFound:     StatusNotFound,
	ErrReportStateInvalid: StatusBadRequest,

	// 存储相关错误码
	ErrStorage:       StatusInternalServerError,
	ErrInvalidFormat: StatusBadRequest,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
