package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-share/internal/jsoncodec"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

// NativeHandler serves a native boundary over HTTP so that remote processes
// can use it through the remote client.
type NativeHandler struct {
	native simpleshare.NativeBoundary
	logger *slog.Logger
}

// NewNativeHandler creates a new native handler
func NewNativeHandler(native simpleshare.NativeBoundary, logger *slog.Logger) *NativeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeHandler{native: native, logger: logger}
}

// Routes returns the routes for the native boundary
func (h *NativeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)
	r.Get("/capabilities", h.GetCapabilities)

	r.Post("/references", h.CreateReference)
	r.Delete("/references/{handle}", h.ReleaseReference)

	r.Post("/references/{handle}/links", h.GenerateShortURL)
	r.Post("/references/{handle}/share-sheet", h.ShowShareSheet)
	r.Post("/references/{handle}/views", h.RegisterView)
	r.Post("/references/{handle}/actions", h.UserCompletedAction)
	r.Post("/references/{handle}/spotlight", h.ListOnSpotlight)

	r.Post("/events", h.LogEvent)

	return r
}

// Health reports liveness
func (h *NativeHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// GetCapabilities reports availability and the supported capabilities
func (h *NativeHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	resp := CapabilitiesResponse{Available: true, Capabilities: []string{}}
	if a, ok := h.native.(simpleshare.Availability); ok {
		resp.Available = a.Available()
	}
	for _, c := range AllCapabilities {
		if caps, ok := h.native.(simpleshare.Capabilities); ok && !caps.Supports(c) {
			continue
		}
		resp.Capabilities = append(resp.Capabilities, string(c))
	}
	render.JSON(w, r, resp)
}

// CreateReference registers a descriptor and returns its handle
func (h *NativeHandler) CreateReference(w http.ResponseWriter, r *http.Request) {
	var req CreateReferenceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Payload == nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "payload is required")
		return
	}

	handle, err := h.native.CreateReference(r.Context(), req.Payload)
	if err != nil {
		h.handleError(w, r, "create_reference", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreateReferenceResponse{Handle: string(handle)})
}

// ReleaseReference drops a handle
func (h *NativeHandler) ReleaseReference(w http.ResponseWriter, r *http.Request) {
	if err := h.native.ReleaseReference(r.Context(), handleParam(r)); err != nil {
		h.handleError(w, r, "release_reference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogEvent records an event against a list of handles
func (h *NativeHandler) LogEvent(w http.ResponseWriter, r *http.Request) {
	var req LogEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "name is required")
		return
	}

	handles := make([]simpleshare.HandleID, len(req.Handles))
	for i, handle := range req.Handles {
		handles[i] = simpleshare.HandleID(handle)
	}

	if err := h.native.LogEvent(r.Context(), handles, req.Name, req.Payload); err != nil {
		h.handleError(w, r, "log_event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateShortURL creates a share link for a handle
func (h *NativeHandler) GenerateShortURL(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	link, err := h.native.GenerateShortURL(r.Context(), handleParam(r), req.LinkProperties, req.ControlParams)
	if err != nil {
		h.handleError(w, r, "generate_short_url", err)
		return
	}

	resp := LinkResponse{}
	if link != nil {
		resp.URL = link.URL
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// ShowShareSheet presents a share sheet for a handle
func (h *NativeHandler) ShowShareSheet(w http.ResponseWriter, r *http.Request) {
	var req ShareSheetRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.native.ShowShareSheet(r.Context(), handleParam(r), req.ShareOptions, req.LinkProperties, req.ControlParams)
	if err != nil {
		h.handleError(w, r, "show_share_sheet", err)
		return
	}

	resp := ShareSheetResponse{}
	if result != nil {
		resp = ShareSheetResponse{Channel: result.Channel, Completed: result.Completed, Error: result.Error}
	}
	render.JSON(w, r, resp)
}

// RegisterView records a view of a handle's content
func (h *NativeHandler) RegisterView(w http.ResponseWriter, r *http.Request) {
	if err := h.native.RegisterView(r.Context(), handleParam(r)); err != nil {
		h.handleError(w, r, "register_view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserCompletedAction records a named action against a handle
func (h *NativeHandler) UserCompletedAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Action == "" {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "action is required")
		return
	}

	if err := h.native.UserCompletedAction(r.Context(), handleParam(r), req.Action, req.State); err != nil {
		h.handleError(w, r, "user_completed_action", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOnSpotlight lists a handle's content in the platform index
func (h *NativeHandler) ListOnSpotlight(w http.ResponseWriter, r *http.Request) {
	if err := h.native.ListOnSpotlight(r.Context(), handleParam(r)); err != nil {
		h.handleError(w, r, "list_on_spotlight", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleParam(r *http.Request) simpleshare.HandleID {
	return simpleshare.HandleID(chi.URLParam(r, "handle"))
}

func (h *NativeHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := jsoncodec.Decode(r.Body, v); err != nil {
		h.logger.Debug("Invalid request body", "path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleError maps a boundary failure to its HTTP status. NativeError codes
// are passed through so that clients can reconstruct the failure.
func (h *NativeHandler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var nerr *simpleshare.NativeError
	if errors.As(err, &nerr) {
		status := http.StatusInternalServerError
		if nerr.Code == simpleshare.CodeHandleNotFound {
			status = http.StatusNotFound
		}
		h.writeError(w, r, status, nerr.Code, nerr.Message)
		return
	}

	h.logger.Error("Native call failed", "op", op, "error", err)
	h.writeError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
}

func (h *NativeHandler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: code, Message: message})
}
