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
)

type packResponse struct {
	ID                uuid.UUID  `json:"id"`
	SourceBatchID     *uuid.UUID `json:"source_batch_id"`
	LocationID        *uuid.UUID `json:"location_id"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	LabelCode         *string    `json:"label_code"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toPackResponse(p models.Pack) packResponse {
	return packResponse{
		ID:                p.ID,
		SourceBatchID:     p.SourceBatchID,
		LocationID:        p.LocationID,
		FulfillmentStatus: string(p.FulfillmentStatus),
		LabelCode:         p.LabelCode,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func handleMintPacks(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		Count      int        `json:"count" validate:"required,gt=0"`
		LocationID *uuid.UUID `json:"location_id"`
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

		packs, err := fulfillmentService.MintPacks(r.Context(), batchID, data.Count, data.LocationID, &op.ID)

		switch {
		case err == nil:
			out := make([]packResponse, 0, len(packs))
			for _, p := range packs {
				out = append(out, toPackResponse(p))
			}
			render.JSONWithStatus(w, out, http.StatusCreated)
		case errors.Is(err, apperrors.ErrBatchNotFound):
			render.ServiceError(w, "Batch not found", http.StatusNotFound)
		default:
			l.Error("Failed to mint packs", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetPack(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		packID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		pack, err := fulfillmentService.GetPack(r.Context(), packID)

		switch {
		case err == nil:
			render.JSON(w, toPackResponse(pack))
		case errors.Is(err, apperrors.ErrPackNotFound):
			render.ServiceError(w, "Pack not found", http.StatusNotFound)
		default:
			l.Error("Failed to get pack", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleMovePack(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		Status string `json:"status" validate:"required"`
		Note   string `json:"note"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, ok := opctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		packID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pack, err := fulfillmentService.MovePack(r.Context(), packID, models.PackFulfillmentStatus(data.Status), &op.ID, data.Note)

		switch {
		case err == nil:
			render.JSON(w, toPackResponse(pack))
		case errors.Is(err, apperrors.ErrStatusInvalid):
			render.ServiceError(w, "Unknown fulfillment status", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrPackNotFound):
			render.ServiceError(w, "Pack not found", http.StatusNotFound)
		default:
			l.Error("Failed to move pack", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleMoveBatchPacks(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		From string `json:"from" validate:"required"`
		To   string `json:"to" validate:"required"`
		Note string `json:"note"`
	}
	type response struct {
		Moved int64 `json:"moved"`
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

		moved, err := fulfillmentService.MoveBatchPacks(
			r.Context(),
			batchID,
			models.PackFulfillmentStatus(data.From),
			models.PackFulfillmentStatus(data.To),
			&op.ID,
			data.Note,
		)

		switch {
		case err == nil:
			render.JSON(w, response{Moved: moved})
		case errors.Is(err, apperrors.ErrStatusInvalid):
			render.ServiceError(w, "Unknown fulfillment status", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to move batch packs", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleBindLabel(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		Code string `json:"code" validate:"required,min=1,max=100"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		packID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pack, err := fulfillmentService.BindLabel(r.Context(), packID, data.Code)

		switch {
		case err == nil:
			render.JSON(w, toPackResponse(pack))
		case errors.Is(err, apperrors.ErrPackNotFound):
			render.ServiceError(w, "Pack not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrLabelAlreadyBound):
			render.ServiceError(w, "Label code already bound", http.StatusConflict)
		case errors.Is(err, apperrors.ErrPackAlreadyLabeled):
			render.ServiceError(w, "Pack already labeled", http.StatusConflict)
		default:
			l.Error("Failed to bind label", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAssignLocation(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		LocationID uuid.UUID `json:"location_id" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		packID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pack, err := fulfillmentService.AssignLocation(r.Context(), packID, data.LocationID)

		switch {
		case err == nil:
			render.JSON(w, toPackResponse(pack))
		case errors.Is(err, apperrors.ErrPackNotFound):
			render.ServiceError(w, "Pack not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrLocationNotFound):
			render.ServiceError(w, "Location not found", http.StatusNotFound)
		default:
			l.Error("Failed to assign location", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCreateLocation(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required,min=1,max=100"`
		Kind string `json:"kind" validate:"required,oneof=WAREHOUSE KIOSK"`
	}
	type response struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Kind      string    `json:"kind"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		loc, err := fulfillmentService.CreateLocation(r.Context(), data.Name, data.Kind)
		if err != nil {
			l.Error("Failed to create location", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, response{loc.ID, loc.Name, loc.Kind, loc.CreatedAt}, http.StatusCreated)
	})
}

func handleListLocations(fulfillmentService fulfillmentService, l logger.Logger) http.Handler {
	type location struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Kind      string    `json:"kind"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locations, err := fulfillmentService.ListLocations(r.Context())
		if err != nil {
			l.Error("Failed to list locations", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]location, 0, len(locations))
		for _, loc := range locations {
			out = append(out, location{loc.ID, loc.Name, loc.Kind, loc.CreatedAt})
		}
		render.JSON(w, out)
	})
}
