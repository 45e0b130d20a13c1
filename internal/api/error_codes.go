// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// 业务错误，与 internal/errors 的错误代码一致
	ErrorValidation            = "VALIDATION_ERROR"
	ErrorSessionNotFound       = "SESSION_NOT_FOUND"
	ErrorArticleNotFound       = "ARTICLE_NOT_FOUND"
	ErrorProcessing            = "PROCESSING_ERROR"
	ErrorLLMServiceUnavailable = "CONFIGURATION_ERROR"
	ErrorGenerationParse       = "GENERATION_PARSE_ERROR"
	ErrorGenerationTimeout     = "TIMEOUT"

	// 导出相关错误
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
	ErrorExportFailed        = "EXPORT_FAILED"
)
