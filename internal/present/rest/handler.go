package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
	"github.com/docutrust/docutrust/internal/present/rest/presenter"
	"github.com/docutrust/docutrust/internal/service"
	"github.com/docutrust/docutrust/internal/usecase"
)

const maxUploadBytes = 16 << 20 // 16MiB

type Handler struct {
	document  *usecase.DocumentUsecase
	verify    *usecase.VerifyUsecase
	principal *usecase.PrincipalUsecase
	events    *service.EventService
}

func NewHandler(
	document *usecase.DocumentUsecase,
	verify *usecase.VerifyUsecase,
	principal *usecase.PrincipalUsecase,
	events *service.EventService,
) *Handler {
	return &Handler{
		document:  document,
		verify:    verify,
		principal: principal,
		events:    events,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/register", h.handleRegister)
	e.POST("/api/v1/documents", h.handleCreateDocument)
	e.GET("/api/v1/documents", h.handleListDocuments)
	e.GET("/api/v1/documents/:id", h.handleGetDocument)
	e.GET("/api/v1/documents/:id/content", h.handleGetContent)
	e.POST("/api/v1/documents/:id/sign", h.handleSign)
	// verification is a pure read; POST is kept for older clients
	e.GET("/api/v1/documents/:id/verify", h.handleVerify)
	e.POST("/api/v1/documents/:id/verify", h.handleVerify)
	e.GET("/api/v1/documents/:id/events", h.handleEvents)
	e.GET("/api/v1/dashboard", h.handleDashboard)
}

// requesterID prefers the authenticated identity from the session token over
// anything the request body claims.
func requesterID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(domain.RequesterIdCtxKey).(string); ok && id != "" {
		return id
	}
	return c.Request().Header.Get(domain.RequesterIdHeader)
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req docutrust.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	principal, err := h.principal.Register(ctx, req)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, principal)
}

func (h *Handler) handleCreateDocument(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateDocumentInput

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if isMultipart(contentType) {
		var err error
		input, err = bindMultipartDocument(c)
		if err != nil {
			return presenter.BadRequestMessage(c, err.Error())
		}
	} else {
		var req docutrust.CreateDocumentRequest
		if err := c.Bind(&req); err != nil {
			return presenter.BadRequestMessage(c, "invalid request body")
		}
		input = usecase.CreateDocumentInput{
			Title:     req.Title,
			Content:   req.Content,
			CreatorID: req.CreatorID,
			Signers:   req.Signers,
		}
	}

	if id := requesterID(c); id != "" {
		input.CreatorID = id
	}

	doc, err := h.document.Create(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, doc)
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEMultipartForm)
}

// bindMultipartDocument reads the upload form: title, content and a JSON
// encoded signers field, plus an optional file part that becomes the
// canonical bytes.
func bindMultipartDocument(c echo.Context) (usecase.CreateDocumentInput, error) {
	input := usecase.CreateDocumentInput{
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		CreatorID: c.FormValue("creatorId"),
	}

	if signersJSON := c.FormValue("signers"); signersJSON != "" {
		if err := json.Unmarshal([]byte(signersJSON), &input.Signers); err != nil {
			return usecase.CreateDocumentInput{}, errors.New("signers must be a JSON array")
		}
	}

	header, err := c.FormFile("file")
	if err != nil {
		// no file part is fine, the text content is the canonical source
		return input, nil
	}
	if header.Size > maxUploadBytes {
		return usecase.CreateDocumentInput{}, errors.New("file too large")
	}

	file, err := header.Open()
	if err != nil {
		return usecase.CreateDocumentInput{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return usecase.CreateDocumentInput{}, err
	}

	input.File = data
	input.FileName = header.Filename
	return input, nil
}

func (h *Handler) handleListDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	principalID := requesterID(c)
	if principalID == "" {
		principalID = c.QueryParam("principal")
	}
	if principalID == "" {
		return presenter.BadRequestMessage(c, "principal is required")
	}

	docs, err := h.document.ListForPrincipal(ctx, principalID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, docs)
}

func (h *Handler) handleGetDocument(c echo.Context) error {
	ctx := c.Request().Context()

	doc, err := h.document.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, doc)
}

func (h *Handler) handleGetContent(c echo.Context) error {
	ctx := c.Request().Context()

	data, fileName, err := h.document.Content(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}

	if fileName != "" {
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
		return c.Blob(http.StatusOK, http.DetectContentType(data), data)
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, data)
}

func (h *Handler) handleSign(c echo.Context) error {
	ctx := c.Request().Context()

	var req docutrust.SignRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	signerID := requesterID(c)
	if signerID == "" {
		signerID = req.SignerID
	}

	doc, err := h.document.Sign(ctx, c.Param("id"), signerID, req.Signature)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, doc)
}

func (h *Handler) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.verify.Verify(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, report)
}

func (h *Handler) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	principalID := requesterID(c)
	if principalID == "" {
		principalID = c.QueryParam("principal")
	}
	if principalID == "" {
		return presenter.BadRequestMessage(c, "principal is required")
	}

	dashboard, err := h.document.Dashboard(ctx, principalID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, dashboard)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents streams one document's lifecycle events over a websocket. The
// document must exist before the upgrade so unknown ids still get a 404.
func (h *Handler) handleEvents(c echo.Context) error {
	ctx := c.Request().Context()
	documentID := c.Param("id")

	if _, err := h.document.Get(ctx, documentID); err != nil {
		return presenter.Error(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	pubsub := h.events.Subscribe(ctx, documentID)
	defer pubsub.Close()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event docutrust.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Malformed event payload",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				continue
			}

			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
