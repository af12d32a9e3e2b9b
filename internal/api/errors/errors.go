// Пакет errors — ответы об ошибках API Jobly в едином формате
// {"error": {"code": "...", "message": "..."}}.
// HTTP-статус выводится из кода, поэтому пара code/status не расходится.
package errors

import (
	"encoding/json"
	"net/http"
)

// Code — машиночитаемый код ошибки.
type Code string

const (
	CodeValidationError  Code = "VALIDATION_ERROR"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeConflict         Code = "CONFLICT"
	CodeInternalError    Code = "INTERNAL_ERROR"
)

// statusByCode — HTTP-статус для каждого кода. Неизвестный код — 500.
var statusByCode = map[Code]int{
	CodeValidationError:  http.StatusBadRequest,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeConflict:         http.StatusConflict,
	CodeInternalError:    http.StatusInternalServerError,
}

// Status возвращает HTTP-статус кода.
func (c Code) Status() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type response struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Write записывает ошибку с кодом code.
func Write(w http.ResponseWriter, code Code, message string) {
	var body response
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.Status())
	_ = json.NewEncoder(w).Encode(body)
}

func ValidationError(w http.ResponseWriter, message string) {
	Write(w, CodeValidationError, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Write(w, CodeNotFound, message)
}

// Unauthorized — 401. Используется и для анонимных запросов, и при нехватке прав.
func Unauthorized(w http.ResponseWriter, message string) {
	Write(w, CodeUnauthorized, message)
}

func Conflict(w http.ResponseWriter, message string) {
	Write(w, CodeConflict, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Write(w, CodeInternalError, message)
}

// RouteNotFound — обработчик неизвестных путей для chi (router.NotFound).
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, CodeNotFound, "Маршрут не найден: "+r.URL.Path)
}

// MethodNotAllowed — обработчик неподдерживаемых методов для chi (router.MethodNotAllowed).
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, CodeMethodNotAllowed, "Метод "+r.Method+" не поддерживается для "+r.URL.Path)
}
