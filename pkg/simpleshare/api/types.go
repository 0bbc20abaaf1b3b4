package api

import "github.com/tendant/simple-share/pkg/simpleshare"

// CreateReferenceRequest is the request body for registering a descriptor
type CreateReferenceRequest struct {
	Payload simpleshare.Payload `json:"payload"`
}

// CreateReferenceResponse is the response body carrying a new handle
type CreateReferenceResponse struct {
	Handle string `json:"handle"`
}

// LogEventRequest is the request body for logging an event
type LogEventRequest struct {
	Name    string              `json:"name"`
	Handles []string            `json:"handles"`
	Payload simpleshare.Payload `json:"payload,omitempty"`
}

// LinkRequest is the request body for generating a short URL
type LinkRequest struct {
	LinkProperties simpleshare.Payload `json:"link_properties,omitempty"`
	ControlParams  simpleshare.Payload `json:"control_params,omitempty"`
}

// LinkResponse is the response body for a generated short URL
type LinkResponse struct {
	URL string `json:"url"`
}

// ShareSheetRequest is the request body for presenting a share sheet
type ShareSheetRequest struct {
	ShareOptions   simpleshare.Payload `json:"share_options,omitempty"`
	LinkProperties simpleshare.Payload `json:"link_properties,omitempty"`
	ControlParams  simpleshare.Payload `json:"control_params,omitempty"`
}

// ShareSheetResponse is the outcome of a share sheet
type ShareSheetResponse struct {
	Channel   string `json:"channel,omitempty"`
	Completed bool   `json:"completed"`
	Error     string `json:"error,omitempty"`
}

// ActionRequest is the request body for a completed user action
type ActionRequest struct {
	Action string              `json:"action"`
	State  simpleshare.Payload `json:"state,omitempty"`
}

// CapabilitiesResponse describes the state of the served boundary
type CapabilitiesResponse struct {
	Available    bool     `json:"available"`
	Capabilities []string `json:"capabilities"`
}

// ErrorResponse is the {code, message} failure body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes used for failures that do not originate in the boundary
const (
	CodeBadRequest = "bad_request"
	CodeInternal   = "internal_error"
)

// AllCapabilities lists the capabilities probed by GET /capabilities
var AllCapabilities = []simpleshare.Capability{
	simpleshare.CapabilitySpotlight,
	simpleshare.CapabilityShareSheet,
}
