package response

import (
	"encoding/json"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/logger"
	"net/http"
	"strconv"
)

const retryAfterSeconds = 1

// Envelope is the body shape of every JSON response.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data,omitempty"`
	Pagination *gDto.Pagination `json:"pagination,omitempty"`
	Analytics  any              `json:"analytics,omitempty"`
	Filters    any              `json:"filters,omitempty"`
	ReportType string           `json:"reportType,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Envelope{Success: code < http.StatusBadRequest, Message: message})
}

// WithJSON sends a successful response carrying data
func WithJSON(writer http.ResponseWriter, code int, message string, data any) {
	response(writer, code, Envelope{Success: true, Message: message, Data: data})
}

// WithPage sends a successful list response with its pagination block
func WithPage(writer http.ResponseWriter, data any, pagination gDto.Pagination) {
	response(writer, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &pagination})
}

// WithEnvelope sends a prepared envelope as is
func WithEnvelope(writer http.ResponseWriter, code int, envelope Envelope) {
	response(writer, code, envelope)
}

// WithError sends a response with an error message. Conflict details travel in data,
// and internal failures never expose their cause.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	message := err.Error()

	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		logger.ErrorWithStack(err)

		message = constant.ResponseErrorInternal
	}

	if failure.IsRetryable(err) {
		writer.Header().Set(constant.ResponseHeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	}

	response(writer, code, Envelope{Message: message, Data: failure.GetDetails(err)})
}

// WithFile streams a binary attachment
func WithFile(writer http.ResponseWriter, contentType, fileName string, content []byte) {
	writer.Header().Set(constant.RequestHeaderContentType, contentType)
	writer.Header().Set(constant.RequestHeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	writer.Header().Set(constant.ResponseHeaderContentLength, strconv.Itoa(len(content)))
	writer.WriteHeader(http.StatusOK)

	if _, err := writer.Write(content); err != nil {
		logger.ErrorWithStack(err)
	}
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
