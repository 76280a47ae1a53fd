package http

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

var slugRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateSlug(fl validator.FieldLevel) bool {
	return slugRegexp.MatchString(fl.Field().String())
}

// shortenRequest is the body of POST /shorten.
type shortenRequest struct {
	LongURL string `json:"longUrl" validate:"required,url"`
	Slug    string `json:"slug" validate:"omitempty,slug"`
}

type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

type metadataRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type metadataData struct {
	Title       *string `json:"title"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
}

type metadataResponse struct {
	Success bool          `json:"success"`
	Data    *metadataData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func toMetadataResponse(md *entity.Metadata) metadataResponse {
	return metadataResponse{
		Success: true,
		Data: &metadataData{
			Title:       md.Title,
			Image:       md.Image,
			Description: md.Description,
		},
	}
}

type visitResponse struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// statsResponse exposes a URL record with its raw visit history.
type statsResponse struct {
	Slug           string          `json:"slug"`
	LongURL        string          `json:"longUrl"`
	VisitCount     int64           `json:"visitCount"`
	VisitorDetails []visitResponse `json:"visitorDetails"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toStatsResponse(url *entity.URLRecord) statsResponse {
	visits := make([]visitResponse, 0, len(url.VisitHistory))
	for _, v := range url.VisitHistory {
		visits = append(visits, visitResponse(v))
	}

	return statsResponse{
		Slug:           url.Slug,
		LongURL:        url.LongURL,
		VisitCount:     url.VisitCount,
		VisitorDetails: visits,
		CreatedAt:      url.CreatedAt,
		UpdatedAt:      url.UpdatedAt,
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse   = errorResponse{Error: "empty request body"}
	invalidRequestBodyResponse = errorResponse{Error: "invalid request body"}
	slugConflictResponse       = errorResponse{Error: "slug already exists"}
	urlNotFoundResponse        = errorResponse{Error: "url not found"}
	serverErrorResponse        = errorResponse{Error: "internal server error"}

	metadataFailureResponse = metadataResponse{Error: "failed to extract metadata"}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "slug":
		return "slug must be 1-64 characters of letters, digits, '_' or '-'"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Error:  "validation error",
		Errors: getValidationErrors(err),
	}
}
