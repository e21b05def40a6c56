package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/usecase"
)

// Handler exposes the scheduling engine over REST.
type Handler struct {
	sessions   usecase.PracticeSessionCoordinator
	queue      usecase.ReviewQueueManager
	followUps  usecase.SpacedFollowUpService
	curveballs usecase.CurveballService
	tracker    usecase.CoverageTracker
	cfg        usecase.SchedulingConfig
	logger     *logrus.Logger
}

// NewHandler wires the REST surface over the engine usecases.
func NewHandler(
	sessions usecase.PracticeSessionCoordinator,
	queue usecase.ReviewQueueManager,
	followUps usecase.SpacedFollowUpService,
	curveballs usecase.CurveballService,
	tracker usecase.CoverageTracker,
	cfg usecase.SchedulingConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		sessions:   sessions,
		queue:      queue,
		followUps:  followUps,
		curveballs: curveballs,
		tracker:    tracker,
		cfg:        cfg,
		logger:     logger,
	}
}

// Register mounts all routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/books/:bookID/followups/ensure", h.EnsureFollowUps)
	api.POST("/books/:bookID/followups/force", h.ForceFollowUps)
	api.POST("/books/:bookID/curveballs/ensure", h.EnsureCurveballs)
	api.POST("/books/:bookID/curveballs/force", h.ForceCurveballs)
	api.GET("/books/:bookID/review-items", h.ListReviewItems)
	api.GET("/books/:bookID/mastery", h.BookMastery)

	api.GET("/sessions", h.GetOrCreateSession)
	api.POST("/sessions/refresh", h.RefreshSession)
	api.POST("/sessions/:sessionID/start", h.StartSession)
	api.POST("/sessions/:sessionID/pause", h.PauseSession)
	api.POST("/sessions/:sessionID/complete", h.CompleteSession)

	api.POST("/responses", h.RecordResponses)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidIdeaID),
		errors.Is(err, entity.ErrInvalidBookID):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrSessionNotFound),
		errors.Is(err, entity.ErrTestNotFound),
		errors.Is(err, entity.ErrQueueItemNotFound),
		errors.Is(err, entity.ErrCoverageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidSessionTransition):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrGenerationFailed):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func parseBookID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("bookID"))
	if err != nil {
		return uuid.Nil, entity.ErrInvalidBookID
	}
	return id, nil
}

// EnsureFollowUps runs the idempotent spaced follow-up enqueue pass.
func (h *Handler) EnsureFollowUps(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.followUps.EnsureQueuedIfDue(c.Request().Context(), bookID, c.QueryParam("bookTitle")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ForceFollowUps backdates follow-up due dates. Debug hook.
func (h *Handler) ForceFollowUps(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.followUps.ForceAllDue(c.Request().Context(), bookID, c.QueryParam("bookTitle")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EnsureCurveballs runs the idempotent curveball enqueue pass.
func (h *Handler) EnsureCurveballs(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.curveballs.EnsureQueuedIfDue(c.Request().Context(), bookID, c.QueryParam("bookTitle")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ForceCurveballs backdates curveball due dates. Debug hook.
func (h *Handler) ForceCurveballs(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.curveballs.ForceAllDue(c.Request().Context(), bookID, c.QueryParam("bookTitle")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReviewItems returns the capped daily review selection for a book.
func (h *Handler) ListReviewItems(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	daily, err := h.queue.GetDailyReviewItems(
		c.Request().Context(),
		bookID,
		c.QueryParam("bookTitle"),
		h.cfg.ReviewMCQCap,
		h.cfg.ReviewOpenCap,
	)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, dailyReviewItemsResponse{
		MCQItems:       lo.Map(daily.MCQItems, toReviewItemDTO),
		OpenEndedItems: lo.Map(daily.OpenEndedItems, toReviewItemDTO),
	})
}

// BookMastery returns the per-idea mastery summary of a book.
func (h *Handler) BookMastery(c echo.Context) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	summary, err := h.tracker.BookMastery(c.Request().Context(), bookID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookMasteryResponse{
		Ideas: lo.Map(summary, func(m usecase.IdeaMastery, _ int) ideaMasteryDTO {
			return ideaMasteryDTO{
				IdeaID:            m.IdeaID,
				MasteryLevel:      m.MasteryLevel,
				CoveredCategories: m.CoveredCategories,
				QuestionsSeen:     m.QuestionsSeen,
				QuestionsCorrect:  m.QuestionsCorrect,
			}
		}),
	})
}

func ideaRefFromRequest(req sessionRequest) usecase.IdeaRef {
	return usecase.IdeaRef{
		ID:        req.IdeaID,
		BookID:    req.BookID,
		Title:     req.IdeaTitle,
		BookTitle: req.BookTitle,
	}
}

// GetOrCreateSession resumes or generates the session for one slot.
func (h *Handler) GetOrCreateSession(c echo.Context) error {
	req, err := sessionRequestFromQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	bundle, err := h.sessions.GetOrCreateSession(c.Request().Context(), ideaRefFromRequest(req), req.SessionType)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionBundleDTO(bundle))
}

// RefreshSession discards the slot's session and regenerates it.
func (h *Handler) RefreshSession(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return h.writeError(c, entity.ErrInvalidIdeaID)
	}
	if req.BookID == uuid.Nil {
		return h.writeError(c, entity.ErrInvalidBookID)
	}
	bundle, err := h.sessions.RefreshSession(c.Request().Context(), ideaRefFromRequest(req), req.SessionType)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionBundleDTO(bundle))
}

func (h *Handler) transition(c echo.Context, apply func(ctx echo.Context, id uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		return h.writeError(c, entity.ErrSessionNotFound)
	}
	if err := apply(c, id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// StartSession moves a ready session into progress.
func (h *Handler) StartSession(c echo.Context) error {
	return h.transition(c, func(ctx echo.Context, id uuid.UUID) error {
		return h.sessions.StartSession(ctx.Request().Context(), id)
	})
}

// PauseSession suspends an in-progress session.
func (h *Handler) PauseSession(c echo.Context) error {
	return h.transition(c, func(ctx echo.Context, id uuid.UUID) error {
		return h.sessions.PauseSession(ctx.Request().Context(), id)
	})
}

// CompleteSession finishes an in-progress session.
func (h *Handler) CompleteSession(c echo.Context) error {
	return h.transition(c, func(ctx echo.Context, id uuid.UUID) error {
		return h.sessions.CompleteSession(ctx.Request().Context(), id)
	})
}

// RecordResponses closes the loop for one answered test.
func (h *Handler) RecordResponses(c echo.Context) error {
	var req recordResponsesRequest
	if err := c.Bind(&req); err != nil {
		return h.writeError(c, entity.ErrInvalidIdeaID)
	}
	idea := usecase.IdeaRef{
		ID:        req.IdeaID,
		BookID:    req.BookID,
		Title:     req.IdeaTitle,
		BookTitle: req.BookTitle,
	}
	responses := lo.Map(req.Responses, func(r questionResponseDTO, _ int) entity.QuestionResponse {
		return r.toEntity()
	})
	if err := h.sessions.RecordResponses(c.Request().Context(), idea, req.SessionID, responses); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
