package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/httputil"
	"coursehub/pkg/requestcontext"
)

// CredentialBook is one credential collection of the service.
type CredentialBook[P any, F any] interface {
	Kind() models.Kind
	List(ctx context.Context, userID id.UserID) ([]P, error)
	Create(ctx context.Context, userID id.UserID, fields F) (P, error)
	Upsert(ctx context.Context, userID id.UserID, items []models.Item[F]) (*models.UpsertResult[P], error)
	Delete(ctx context.Context, userID id.UserID, recordID id.CredentialID) error
}

// CredentialRoutes mounts the routes of one credential kind.
type CredentialRoutes interface {
	Kind() models.Kind
	register(r chi.Router, logger *slog.Logger)
}

type credentialRoutes[P any, F any] struct {
	book    CredentialBook[P, F]
	present func(P) any
}

func WorkExperienceRoutes(book CredentialBook[*models.WorkExperience, models.WorkExperienceFields]) CredentialRoutes {
	return &credentialRoutes[*models.WorkExperience, models.WorkExperienceFields]{book: book, present: presentWork}
}

func LearningExperienceRoutes(book CredentialBook[*models.LearningExperience, models.LearningExperienceFields]) CredentialRoutes {
	return &credentialRoutes[*models.LearningExperience, models.LearningExperienceFields]{book: book, present: presentLearning}
}

func CertificateRoutes(book CredentialBook[*models.Certificate, models.CertificateFields]) CredentialRoutes {
	return &credentialRoutes[*models.Certificate, models.CertificateFields]{book: book, present: presentCertificate}
}

func (c *credentialRoutes[P, F]) Kind() models.Kind {
	return c.book.Kind()
}

func (c *credentialRoutes[P, F]) register(r chi.Router, logger *slog.Logger) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		recs, err := c.book.List(ctx, requestcontext.UserID(ctx))
		if err != nil {
			writeServiceError(ctx, w, logger, err, "list "+string(c.Kind()))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Items: presentAll(recs, c.present)})
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fields, ok := httputil.DecodeAndPrepare[F](w, r, logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		rec, err := c.book.Create(ctx, requestcontext.UserID(ctx), *fields)
		if err != nil {
			writeServiceError(ctx, w, logger, err, "create "+string(c.Kind()))
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, c.present(rec))
	})

	r.Put("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, ok := httputil.DecodeAndPrepare[batchRequest](w, r, logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		items, err := decodeItems[F](req.Items)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		res, err := c.book.Upsert(ctx, requestcontext.UserID(ctx), items)
		if err != nil {
			writeServiceError(ctx, w, logger, err, "upsert "+string(c.Kind()))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, upsertResponse{
			Created:      presentAll(res.Created, c.present),
			Updated:      presentAll(res.Updated, c.present),
			Records:      presentAll(res.Records, c.present),
			CreatedCount: res.CreatedCount,
			UpdatedCount: res.UpdatedCount,
		})
	})

	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		recordID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if err := c.book.Delete(ctx, requestcontext.UserID(ctx), recordID); err != nil {
			writeServiceError(ctx, w, logger, err, "delete "+string(c.Kind()))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
