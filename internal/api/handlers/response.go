package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Виды ошибок в теле ответа
const (
	KindInvalidInput      = "InvalidInput"
	KindNotFound          = "NotFound"
	KindSlotUnavailable   = "SlotUnavailable"
	KindInvalidTransition = "InvalidTransition"
	KindUnavailable       = "Unavailable"
	KindInternal          = "Internal"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnavailable   = "сервис временно недоступен, повторите запрос позже"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DecodeJSON декодирует тело запроса. Неизвестные поля считаются ошибкой.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ошибку заданного вида
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, ErrorResponse{Kind: kind, Message: message})
}

// RespondBadRequest 400 InvalidInput
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, KindInvalidInput, message)
}

// RespondNotFound 404 NotFound
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, KindNotFound, message)
}

// RespondConflict 409 с указанным видом ошибки
func RespondConflict(w http.ResponseWriter, kind, message string) {
	RespondError(w, http.StatusConflict, kind, message)
}

// RespondUnavailable 503 Unavailable
func RespondUnavailable(w http.ResponseWriter) {
	RespondError(w, http.StatusServiceUnavailable, KindUnavailable, msgUnavailable)
}

// RespondInternalError 500 Internal
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, KindInternal, msgInternalError)
}
