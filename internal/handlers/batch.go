package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/handlers/opctx"
	"github.com/cardrip/cardrip/internal/handlers/render"
	"github.com/cardrip/cardrip/internal/logger"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/service/batchstage"
)

type batchResponse struct {
	ID             uuid.UUID  `json:"id"`
	Label          string     `json:"label"`
	Notes          string     `json:"notes"`
	Tags           []string   `json:"tags"`
	Stage          string     `json:"stage"`
	StageChangedAt *time.Time `json:"stage_changed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toBatchResponse(b models.Batch) batchResponse {
	return batchResponse{
		ID:             b.ID,
		Label:          b.Label,
		Notes:          b.Notes,
		Tags:           b.Tags,
		Stage:          string(b.Stage),
		StageChangedAt: b.StageChangedAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func handleCreateBatch(batchService batchService, l logger.Logger) http.Handler {
	type request struct {
		Label string   `json:"label" validate:"required,min=1,max=200"`
		Notes string   `json:"notes"`
		Tags  []string `json:"tags"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, ok := opctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		batch, err := batchService.CreateBatch(r.Context(), data.Label, data.Notes, data.Tags, &op.ID)
		if err != nil {
			l.Error("Failed to create batch", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toBatchResponse(batch), http.StatusCreated)
	})
}

func handleGetBatch(batchService batchService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batchID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		batch, err := batchService.GetBatch(r.Context(), batchID)

		switch {
		case err == nil:
			render.JSON(w, toBatchResponse(batch))
		case errors.Is(err, apperrors.ErrBatchNotFound):
			render.ServiceError(w, "Batch not found", http.StatusNotFound)
		default:
			l.Error("Failed to get batch", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListBatches(batchService batchService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var stage *models.BatchStage
		if raw := r.URL.Query().Get("stage"); raw != "" {
			s := models.BatchStage(raw)
			stage = &s
		}

		batches, err := batchService.ListBatches(r.Context(), stage)

		switch {
		case err == nil:
			out := make([]batchResponse, 0, len(batches))
			for _, b := range batches {
				out = append(out, toBatchResponse(b))
			}
			render.JSON(w, out)
		case errors.Is(err, apperrors.ErrStageInvalid):
			render.ServiceError(w, "Unknown batch stage", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to list batches", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSetStage(batchService batchService, l logger.Logger) http.Handler {
	type request struct {
		Stage string `json:"stage" validate:"required"`
		Note  string `json:"note"`
		Force bool   `json:"force"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, ok := opctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		batchID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = batchService.SetStage(r.Context(), batchID, models.BatchStage(data.Stage), batchstage.Options{
			ActorID: &op.ID,
			Note:    data.Note,
			Force:   data.Force,
		})

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Stage updated"})
		case errors.Is(err, apperrors.ErrStageInvalid):
			render.ServiceError(w, "Unknown batch stage", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to set batch stage", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListStageEvents(batchService batchService, l logger.Logger) http.Handler {
	type event struct {
		ID        uuid.UUID  `json:"id"`
		Stage     string     `json:"stage"`
		ActorID   *uuid.UUID `json:"actor_id"`
		Note      *string    `json:"note"`
		CreatedAt time.Time  `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batchID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		events, err := batchService.ListStageEvents(r.Context(), batchID)
		if err != nil {
			l.Error("Failed to list stage events", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]event, 0, len(events))
		for _, e := range events {
			out = append(out, event{
				ID:        e.ID,
				Stage:     string(e.Stage),
				ActorID:   e.ActorID,
				Note:      e.Note,
				CreatedAt: e.CreatedAt,
			})
		}
		render.JSON(w, out)
	})
}
