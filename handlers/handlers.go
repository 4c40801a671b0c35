// Package handlers exposes the coaching engine over HTTP. Handlers are thin:
// decode, validate, call a service, map domain errors to status codes.
package handlers

import (
	"net/http"

	"github.com/peakform/coachd/services"
	"github.com/peakform/coachd/utils"
)

// respondDomainError maps a domain error to an HTTP status and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	details := services.GetErrorDetails(err)

	switch services.GetErrorType(err) {
	case services.ErrorTypeValidation, services.ErrorTypeConfiguration:
		_ = utils.WriteBadRequest(w, err.Error(), details)
	case services.ErrorTypeNotFound:
		_ = utils.WriteNotFound(w, err.Error())
	case services.ErrorTypeRateLimit:
		_ = utils.WriteTooManyRequests(w, err.Error(), details)
	case services.ErrorTypeExternal:
		_ = utils.WriteError(w, http.StatusServiceUnavailable, err.Error(), details)
	default:
		_ = utils.WriteInternalServerError(w, "internal server error")
	}
}
