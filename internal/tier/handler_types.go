package tier

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ToggleFeatureRequest is the body of PUT /v1/admin/tiers/:tier/features/:feature
type ToggleFeatureRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// AddFeatureRequest is the body of POST /v1/admin/tiers/:tier/features
type AddFeatureRequest struct {
	Feature string `json:"feature" binding:"required"`
}

// UpdateLimitRequest is the body of PUT /v1/admin/tiers/:tier/limits/:key
type UpdateLimitRequest struct {
	Value *int64 `json:"value" binding:"required"`
}

// SuccessResponse acknowledges an admin mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}
