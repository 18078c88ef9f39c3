package handler

import "github.com/damon-houk/pair-group-store/internal/domain/entity"

// CreatePairGroupRequest is the body of POST /pair-groups
type CreatePairGroupRequest struct {
	IsPinned bool `json:"is_pinned"`
}

// SetPinnedRequest is the body of PUT /pair-groups/{id}/pin
type SetPinnedRequest struct {
	IsPinned *bool `json:"is_pinned"`
}

// AddPairRequest is the body of POST /pair-groups/{id}/pairs
type AddPairRequest struct {
	Base       string   `json:"base"`
	Comparison string   `json:"comparison"`
	Value      *float64 `json:"value"`
}

// UpdatePairValueRequest is the body of PUT /pair-groups/{id}/pairs/{pairId}
type UpdatePairValueRequest struct {
	Value *float64 `json:"value"`
}

// PairGroupListResponse wraps the list endpoint's groups
type PairGroupListResponse struct {
	PairGroups []entity.PairGroup `json:"pair_groups"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
