// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок,
// сообщений валидации и отказов в доступе.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crimewatch/internal/access"
)

// PricingPath страница тарифов, куда отправляется пользователь без попыток.
const PricingPath = "/pricing"

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// DeniedResponse отказ в доступе с причиной и, при необходимости, адресом перехода.
type DeniedResponse struct {
	Status   string        `json:"status" example:"Error"`
	Error    string        `json:"error" example:"free trials exhausted"`
	Reason   access.Reason `json:"reason" example:"trials_exhausted"`
	Redirect string        `json:"redirect,omitempty" example:"/pricing"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// Denied переводит отказ в HTTP-статус и тело ответа.
func Denied(res access.Result) (int, DeniedResponse) {
	body := DeniedResponse{Status: StatusError, Reason: res.Reason}
	switch res.Reason {
	case access.ReasonNotAuthenticated:
		body.Error = "authentication required"
		return http.StatusUnauthorized, body
	case access.ReasonTrialsExhausted:
		body.Error = "free trials exhausted, choose a plan to continue"
		body.Redirect = PricingPath
		return http.StatusPaymentRequired, body
	case access.ReasonAdminDisabled:
		body.Error = "admin access is disabled, contact administrator"
		return http.StatusForbidden, body
	default:
		body.Error = "access denied"
		return http.StatusForbidden, body
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
