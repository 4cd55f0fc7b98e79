// internal/handler/reader_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"rfid-service/internal/model"
	"rfid-service/internal/reader"
	"rfid-service/internal/service"
	"rfid-service/internal/utils"
)

// Error codes returned in the API envelope
const (
	CodeReaderNotConnected = "READER_NOT_CONNECTED"
	CodeConnectionError    = "CONNECTION_ERROR"
	CodeDisconnectionError = "DISCONNECTION_ERROR"
	CodeWriteError         = "WRITE_ERROR"
	CodeReadError          = "READ_ERROR"
	CodeSessionClosed      = "SESSION_CLOSED"
	CodeScanTimeout        = "SCAN_TIMEOUT"
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInternalError      = "INTERNAL_SERVER_ERROR"
)

// ReaderAPI is the reader service surface used by HTTP and WebSocket handlers
type ReaderAPI interface {
	ListPorts(ctx context.Context) ([]model.SerialEndpoint, error)
	Connect(ctx context.Context, port string, position int) error
	Disconnect(ctx context.Context) error
	Scan(ctx context.Context) (*model.TagReading, error)
	Status() model.ReaderStatus
	DefaultPosition() int
}

// ConnectRequest is the body of POST /rfid/connect
type ConnectRequest struct {
	Port     string `json:"port" binding:"required" example:"/dev/ttyUSB0"`
	Position *int   `json:"position,omitempty" example:"1"`
}

// ReaderHandler handles reader-related HTTP requests
type ReaderHandler struct {
	readerService ReaderAPI
	logger        *utils.ServiceLogger
}

// NewReaderHandler creates a new reader handler
func NewReaderHandler(readerService ReaderAPI, logger *zap.Logger) *ReaderHandler {
	return &ReaderHandler{
		readerService: readerService,
		logger:        utils.NewServiceLogger(logger, "reader-handler"),
	}
}

// RegisterRoutes registers reader routes
func (h *ReaderHandler) RegisterRoutes(router *gin.RouterGroup) {
	rfid := router.Group("/rfid")
	{
		rfid.GET("/ports", h.ListPorts)
		rfid.POST("/connect", h.Connect)
		rfid.POST("/disconnect", h.Disconnect)
		rfid.GET("/scan", h.Scan)
		rfid.GET("/status", h.Status)
	}
}

// ListPorts lists serial ports
// @Summary List serial ports
// @Description Enumerate serial ports present on the host, with USB metadata when available
// @Tags Reader
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.SerialEndpoint} "Ports listed"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /rfid/ports [get]
func (h *ReaderHandler) ListPorts(c *gin.Context) {
	ports, err := h.readerService.ListPorts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list ports", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ports listed successfully", ports)
}

// Connect opens the reader on a port
// @Summary Connect reader
// @Description Open the reader on the given port at 57600 baud, replacing any existing connection
// @Tags Reader
// @Accept json
// @Produce json
// @Param request body ConnectRequest true "Port and position"
// @Success 200 {object} utils.APIResponse{data=model.ReaderStatus} "Reader connected"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 500 {object} utils.APIResponse "Previous connection could not be closed"
// @Failure 502 {object} utils.APIResponse "Port could not be opened"
// @Router /rfid/connect [post]
func (h *ReaderHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			utils.ValidationErrorResponse(c, validationErrors(fieldErrs))
			return
		}
		utils.ErrorResponseWithCode(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body", err)
		return
	}

	position := h.readerService.DefaultPosition()
	if req.Position != nil {
		position = *req.Position
	}

	if err := h.readerService.Connect(c.Request.Context(), req.Port, position); err != nil {
		h.writeError(c, "Failed to connect reader", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reader connected successfully", h.readerService.Status())
}

// Disconnect closes the reader connection
// @Summary Disconnect reader
// @Description Close the reader connection; succeeds when already disconnected
// @Tags Reader
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.ReaderStatus} "Reader disconnected"
// @Failure 500 {object} utils.APIResponse "Port could not be closed"
// @Router /rfid/disconnect [post]
func (h *ReaderHandler) Disconnect(c *gin.Context) {
	if err := h.readerService.Disconnect(c.Request.Context()); err != nil {
		h.writeError(c, "Failed to disconnect reader", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reader disconnected successfully", h.readerService.Status())
}

// Scan performs one inventory scan
// @Summary Scan for a tag
// @Description Send one inventory command and decode what arrives within 100 ms
// @Tags Reader
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.TagReading} "Scan completed"
// @Failure 409 {object} utils.APIResponse "Reader not connected or session closed"
// @Failure 502 {object} utils.APIResponse "Serial I/O failed"
// @Failure 504 {object} utils.APIResponse "Scan timed out"
// @Router /rfid/scan [get]
func (h *ReaderHandler) Scan(c *gin.Context) {
	reading, err := h.readerService.Scan(c.Request.Context())
	if err != nil {
		h.writeError(c, "Scan failed", err)
		return
	}

	message := "No tag detected"
	switch reading.Status {
	case model.TagStatusSuccess:
		message = "Tag detected"
	case model.TagStatusError:
		message = "Malformed reader response"
	}
	utils.SuccessResponse(c, http.StatusOK, message, reading)
}

// Status returns the reader status
// @Summary Reader status
// @Description Get connection state, last error and link statistics
// @Tags Reader
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.ReaderStatus} "Reader status"
// @Router /rfid/status [get]
func (h *ReaderHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Reader status retrieved", h.readerService.Status())
}

func (h *ReaderHandler) writeError(c *gin.Context, message string, err error) {
	status, code := classifyError(err)
	logger := utils.LoggerWithRequestID(h.logger.Logger, c.GetString("request_id"))
	if status >= http.StatusInternalServerError {
		utils.LogError(logger, message, err, zap.String("code", code))
	} else {
		logger.Warn(message, zap.Error(err), zap.String("code", code))
	}
	utils.ErrorResponseWithCode(c, status, code, message, err)
}

// validationErrors maps binding failures to field name and failed rule
func validationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

// classifyError maps reader errors to an HTTP status and API error code
func classifyError(err error) (int, string) {
	var (
		connErr  *reader.ConnectionError
		discErr  *reader.DisconnectionError
		writeErr *reader.WriteError
		readErr  *reader.ReadError
	)

	switch {
	case errors.Is(err, service.ErrPortRequired):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, reader.ErrNotConnected):
		return http.StatusConflict, CodeReaderNotConnected
	case errors.Is(err, reader.ErrSessionClosed):
		return http.StatusConflict, CodeSessionClosed
	case errors.As(err, &connErr):
		return http.StatusBadGateway, CodeConnectionError
	case errors.As(err, &discErr):
		return http.StatusInternalServerError, CodeDisconnectionError
	case errors.As(err, &writeErr):
		return http.StatusBadGateway, CodeWriteError
	case errors.As(err, &readErr):
		return http.StatusBadGateway, CodeReadError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeScanTimeout
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
