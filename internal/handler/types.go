package handler

// actionRequest is the single action endpoint's body. Action selects the
// transition; the remaining fields are the form inputs it may use.
type actionRequest struct {
	Action          string `json:"action" binding:"required"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Title           string `json:"title"`
	Theme           string `json:"theme"`
	Style           string `json:"style"`
	SceneCount      int    `json:"scene_count"`
}

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned to clients.
const (
	ErrCodeWrongCredentials = "WRONG_CREDENTIALS"
	ErrCodeDuplicateUser    = "DUPLICATE_USER"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodePipelineFailed   = "PIPELINE_FAILED"
	ErrCodeNoBundle         = "NO_BUNDLE"
	ErrCodeInvalidAction    = "INVALID_ACTION"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInternal         = "INTERNAL_ERROR"
)
