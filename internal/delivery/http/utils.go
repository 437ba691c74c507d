package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate проверяет теги validate у DTO запросов, в сообщениях используются json имена полей
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondData отправляет успешный ответ, предупреждения валидации добавляются только если они есть
func respondData(w http.ResponseWriter, code int, data interface{}, warnings ...string) {
	payload := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	if len(warnings) > 0 {
		payload["warnings"] = warnings
	}
	respondJSON(w, code, payload)
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondValidation отдает полный список ошибок и предупреждений (422)
func respondValidation(w http.ResponseWriter, verr *validation.Error) {
	warnings := verr.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"success":  false,
		"error":    "Validation failed",
		"errors":   verr.Errors,
		"warnings": warnings,
	})
}

// decodeJSON читает тело запроса и проверяет теги validate
// При ошибке ответ уже отправлен и возвращается false
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return false
		}

		messages := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			messages[i] = fieldErrorMessage(fe)
		}
		respondValidation(w, &validation.Error{Errors: messages})
		return false
	}

	return true
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("invalid '%s' with value '%v'", fe.Field(), fe.Value())
	}
}

// parseUUIDParam извлекает UUID из параметра пути
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// handleServiceError переводит ошибку бизнес-логики в HTTP ответ
// Неизвестные ошибки логируются и отдаются клиенту как 500 с общим сообщением
func handleServiceError(w http.ResponseWriter, log logger.Logger, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondValidation(w, verr)
		return
	}

	var conflict *domain.DeleteConflictError
	if errors.As(err, &conflict) {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"success":          false,
			"error":            conflict.Error(),
			"can_force_delete": conflict.CanForceDelete,
			"passengers":       conflict.Passengers,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrGroupTicketNotFound),
		errors.Is(err, domain.ErrPassengerNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrGroupTicketSoldOut),
		errors.Is(err, domain.ErrGroupTicketHasPassengers),
		errors.Is(err, domain.ErrPackageTypeMismatch),
		errors.Is(err, domain.ErrTicketCountBelowAssigned),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrNoAvailableGroupTicket),
		errors.Is(err, domain.ErrPassengerNotAssigned),
		errors.Is(err, domain.ErrUserAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrInvalidPackageType),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidUserData):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")

	case errors.Is(err, domain.ErrTooManyAttempts):
		respondError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")

	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, domain.ErrUserInactive):
		respondError(w, http.StatusForbidden, "User account is inactive")

	default:
		log.Error(fallback, map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
