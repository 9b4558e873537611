package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Engine/Recall 错误：UNAVAILABLE（模型尚未就绪）
//   - Catalog 错误：INVALID_INPUT（重复 ID 等）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "engine"）
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is 让 errors.Is 按 Module+Code 匹配，包装后的错误同样可识别。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Module == t.Module
}

// IsDomainError 检查错误链中是否有 DomainError。
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 返回错误链（含 errors.Join）中的第一个 DomainError，没有则为 nil。
func GetDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause 创建带底层原因的领域错误
func NewDomainErrorWithCause(module, code, message string, cause error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用 / 模型未就绪
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"
	ModuleCatalog = "catalog"
	ModuleFeature = "feature"
	ModuleRecall  = "recall"
	ModuleFilter  = "filter"
	ModuleEngine  = "engine"
)

// ErrNotReady 表示引擎或索引尚未完成初始化（特征/索引未构建）。
// 调用方可在初始化完成后重试。
var ErrNotReady = NewDomainError(ModuleEngine, ErrorCodeUnavailable, "engine: model not ready")

func hasCode(err error, code string) bool {
	de := GetDomainError(err)
	return de != nil && de.Code == code
}

func IsNotFound(err error) bool     { return hasCode(err, ErrorCodeNotFound) }
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }
func IsUnavailable(err error) bool  { return hasCode(err, ErrorCodeUnavailable) }
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsNotReady 报告引擎是否尚不可用；存储后端不可达也归为此类，调用方应稍后重试。
func IsNotReady(err error) bool {
	return IsUnavailable(err)
}
