package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"tractionservice/apperrors"
	"tractionservice/models"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// DecodeAndValidate decodes the request body into a structure and validates
// it, writing the error envelope itself on failure.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleErrorMessage(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return err
	}
	if err := Validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		parts := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			parts = append(parts, e.Field()+" failed "+e.Tag())
		}
		HandleErrorMessage(w, "validation failed: "+strings.Join(parts, ", "), http.StatusBadRequest)
		return err
	}
	return nil
}

// HandleError writes the uniform error envelope with the status the error's
// taxonomy kind conveys.
func HandleError(w http.ResponseWriter, err error) {
	HandleErrorMessage(w, err.Error(), apperrors.HTTPStatus(err))
}

func HandleErrorMessage(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.NewErrorResponse(message))
}

// HandleDataResponse writes the success envelope.
func HandleDataResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.NewDataResponse(data))
}
