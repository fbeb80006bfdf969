// Package handler exposes the teacher-application workflow over HTTP. It is
// a thin translation layer: decoding, authentication context and error
// rendering. All rules live in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/httputil"
	"coursehub/pkg/platform/middleware/admin"
	"coursehub/pkg/platform/middleware/auth"
	"coursehub/pkg/requestcontext"
)

// ApplicationService is the application state controller.
type ApplicationService interface {
	Apply(ctx context.Context, userID id.UserID, fields models.ApplicationFields) (*models.Application, error)
	GetApplication(ctx context.Context, userID id.UserID) (*models.Application, error)
	UpdateApplication(ctx context.Context, userID id.UserID, patch models.ApplicationPatch) (*models.Application, error)
	Resubmit(ctx context.Context, userID id.UserID) (*models.Application, error)
	Submit(ctx context.Context, userID id.UserID) (*models.Application, error)
	GetProfile(ctx context.Context, userID id.UserID) (*models.Application, error)
	UpdateProfile(ctx context.Context, userID id.UserID, patch models.ApplicationPatch) (*models.Application, error)
	Review(ctx context.Context, reviewerID, ownerID id.UserID, decision models.ReviewDecision, notes *string) (*models.Application, error)
}

type Handler struct {
	apps   ApplicationService
	tokens auth.TokenValidator
	creds  []CredentialRoutes
	logger *slog.Logger
}

func New(apps ApplicationService, tokens auth.TokenValidator, logger *slog.Logger, creds ...CredentialRoutes) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{apps: apps, tokens: tokens, creds: creds, logger: logger}
}

// Register mounts the owner routes behind bearer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.tokens, h.logger))

		r.Post("/teacher/application", h.handleApply)
		r.Get("/teacher/application", h.handleGetApplication)
		r.Patch("/teacher/application", h.handleUpdateApplication)
		r.Post("/teacher/application/resubmit", h.handleResubmit)
		r.Post("/teacher/application/submit", h.handleSubmit)
		r.Get("/teacher/profile", h.handleGetProfile)
		r.Patch("/teacher/profile", h.handleUpdateProfile)

		for _, c := range h.creds {
			r.Route("/teacher/credentials/"+string(c.Kind()), func(r chi.Router) {
				c.register(r, h.logger)
			})
		}
	})
}

// RegisterAdmin mounts the reviewer route behind the shared admin token.
func (h *Handler) RegisterAdmin(r chi.Router, adminToken string) {
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(adminToken, h.logger))
		r.Post("/admin/teacher/applications/{userID}/review", h.handleReview)
	})
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ApplicationFields](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.apps.Apply(ctx, requestcontext.UserID(ctx), *req)
	h.respondApplication(ctx, w, http.StatusCreated, app, err, "apply")
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.apps.GetApplication(ctx, requestcontext.UserID(ctx))
	h.respondApplication(ctx, w, http.StatusOK, app, err, "get application")
}

func (h *Handler) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ApplicationPatch](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.apps.UpdateApplication(ctx, requestcontext.UserID(ctx), *req)
	h.respondApplication(ctx, w, http.StatusOK, app, err, "update application")
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.apps.Resubmit(ctx, requestcontext.UserID(ctx))
	h.respondApplication(ctx, w, http.StatusOK, app, err, "resubmit")
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.apps.Submit(ctx, requestcontext.UserID(ctx))
	h.respondApplication(ctx, w, http.StatusOK, app, err, "submit")
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.apps.GetProfile(ctx, requestcontext.UserID(ctx))
	h.respondApplication(ctx, w, http.StatusOK, app, err, "get profile")
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ApplicationPatch](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.apps.UpdateProfile(ctx, requestcontext.UserID(ctx), *req)
	h.respondApplication(ctx, w, http.StatusOK, app, err, "update profile")
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.apps.Review(ctx, req.reviewer, ownerID, models.ReviewDecision(req.Decision), req.Notes)
	h.respondApplication(ctx, w, http.StatusOK, app, err, "review")
}

func (h *Handler) respondApplication(ctx context.Context, w http.ResponseWriter, status int, app *models.Application, err error, op string) {
	if err != nil {
		writeServiceError(ctx, w, h.logger, err, op)
		return
	}
	httputil.WriteJSON(w, status, toApplicationResponse(app))
}

// writeServiceError logs internal failures before rendering. Client errors
// are rendered as they are.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, op string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		logger.ErrorContext(ctx, "teacher application request failed",
			"op", op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
