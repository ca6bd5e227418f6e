package client

import "fmt"

// APIError - единый тип ошибки клиента.
// StatusCode 0 означает, что соединение установить не удалось.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

func newAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsConnectivity сообщает, что ошибка вызвана недоступностью сервера
func (e *APIError) IsConnectivity() bool {
	return e.StatusCode == 0
}
