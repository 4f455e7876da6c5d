package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusServiceUnavailable - 503: 服务不可用.
	StatusServiceUnavailable = 503
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrEnvironmentUnsupported - 503: 运行环境缺少必要能力.
	ErrEnvironmentUnsupported
)

// 门禁相关错误码 (101xxx).
const (
	// ErrPasswordNotSet - 400: 尚未设置管理密码.
	ErrPasswordNotSet int = iota + 101000
	// ErrPasswordAlreadySet - 400: 管理密码已存在.
	ErrPasswordAlreadySet
	// ErrPasswordIncorrect - 401: 密码错误.
	ErrPasswordIncorrect
	// ErrLockedOut - 403: 连续失败次数过多，暂时锁定.
	ErrLockedOut
	// ErrSessionExpired - 401: 管理会话因无操作已自动上锁.
	ErrSessionExpired
)

// 职员相关错误码 (102xxx).
const (
	// ErrStaffNotFound - 404: 职员不存在.
	ErrStaffNotFound int = iota + 102000
	// ErrStaffAlreadyExist - 400: 职员ID已存在.
	ErrStaffAlreadyExist
)

// 会社・场所相关错误码 (103xxx).
const (
	// ErrCompanyNotFound - 404: 会社不存在.
	ErrCompanyNotFound int = iota + 103000
	// ErrLocationNotFound - 404: 场所不存在.
	ErrLocationNotFound
	// ErrSituationNotFound - 404: 事故类型不存在.
	ErrSituationNotFound
	// ErrBodyPartNotFound - 404: 受伤部位不存在.
	ErrBodyPartNotFound
)

// 报告流程相关错误码 (104xxx).
const (
	// ErrReportNotFound - 404: 报告会话不存在.
	ErrReportNotFound int = iota + 104000
	// ErrReportStateInvalid - 400: 当前状态不允许该操作.
	ErrReportStateInvalid
)

// 存储相关错误码 (105xxx).
const (
	// ErrStorage - 500: 存储读写失败.
	ErrStorage int = iota + 105000
	// ErrInvalidFormat - 400: 导入数据格式无效.
	ErrInvalidFormat
)
