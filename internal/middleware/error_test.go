package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_FailureEnvelopeIsConsistent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every failure response carries success=false and the message", prop.ForAll(
		func(message string, useCode int) bool {
			standardCodes := []int{
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusNotFound,
				http.StatusConflict,
				http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusServiceUnavailable,
			}
			if useCode < 0 {
				useCode = -useCode
			}
			statusCode := standardCodes[useCode%len(standardCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			return !response.Success && response.Message == message && response.Data == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessEnvelopeCarriesPayload(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("success responses wrap the payload under data", prop.ForAll(
		func(message string, data map[string]string) bool {
			w := httptest.NewRecorder()
			RespondWithJSON(w, http.StatusOK, message, data)

			if w.Code != http.StatusOK {
				return false
			}

			var response struct {
				Success bool              `json:"success"`
				Message string            `json:"message"`
				Data    map[string]string `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if !response.Success || response.Message != message {
				return false
			}
			for k, v := range data {
				if response.Data[k] != v {
					return false
				}
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.MapOf(gen.AlphaString(), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsLandInData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("field validation errors are returned under data", prop.ForAll(
		func(fieldName string, errorMessage string) bool {
			if fieldName == "" {
				fieldName = "quantity"
			}
			if errorMessage == "" {
				errorMessage = "Value must be greater than or equal to 1"
			}

			w := httptest.NewRecorder()
			RespondWithValidationErrors(w, []ValidationError{{Field: fieldName, Message: errorMessage}})

			if w.Code != http.StatusBadRequest {
				return false
			}

			var response struct {
				Success bool              `json:"success"`
				Message string            `json:"message"`
				Data    []ValidationError `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Success || response.Message == "" {
				return false
			}
			return len(response.Data) == 1 &&
				response.Data[0].Field == fieldName &&
				response.Data[0].Message == errorMessage
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}

	var response Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("panic response is not a valid envelope: %v", err)
	}
	if response.Success {
		t.Error("panic response must not claim success")
	}
}
