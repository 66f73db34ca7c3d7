package serverutils

type SuccessResponseEnvelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type ErrorResponseEnvelope struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}

func SuccessResponse[T any](message string, data T) SuccessResponseEnvelope[T] {
	return SuccessResponseEnvelope[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string, errorType string) ErrorResponseEnvelope {
	return ErrorResponseEnvelope{
		Success:   false,
		Code:      code,
		Message:   message,
		ErrorType: errorType,
	}
}
