package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "tractionservice/middlewares"
	"tractionservice/models"
	service "tractionservice/services"
	"tractionservice/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeasureHandler struct {
	service service.MeasureService
}

func NewMeasureHandler(service service.MeasureService) *MeasureHandler {
	return &MeasureHandler{
		service: service,
	}
}

func (h *MeasureHandler) CreateMeasure(w http.ResponseWriter, r *http.Request) {
	var measure models.Measure
	if err := utils.DecodeAndValidate(w, r, &measure); err != nil {
		return
	}

	measure.TenantID = middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	// Owner defaults to the creating person.
	if measure.OwnerID.IsZero() {
		if personID, err := primitive.ObjectIDFromHex(middleware.GetPersonFromContext(r.Context())); err == nil {
			measure.OwnerID = personID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := h.service.CreateMeasure(ctx, &measure, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, created, http.StatusCreated)
}

func (h *MeasureHandler) GetMeasureByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	measure, err := h.service.GetMeasureByID(ctx, middleware.GetTenantFromContext(r.Context()), id)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, measure, http.StatusOK)
}

func (h *MeasureHandler) GetAllMeasures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	measures, err := h.service.GetAllMeasures(ctx, middleware.GetTenantFromContext(r.Context()))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, measures, http.StatusOK)
}

func (h *MeasureHandler) UpdateMeasure(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	var req models.UpdateMeasureRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.service.UpdateMeasure(ctx, middleware.GetTenantFromContext(r.Context()), id, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, updated, http.StatusOK)
}

func (h *MeasureHandler) DeleteMeasure(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	// The cascade touches three collections; give it the write timeout.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.SoftDeleteMeasure(ctx, middleware.GetTenantFromContext(r.Context()), id, username); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, map[string]interface{}{"deleted_id": id.Hex()}, http.StatusOK)
}

func (h *MeasureHandler) RecordValue(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	var req models.RecordValueRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	measure, err := h.service.RecordValue(ctx, middleware.GetTenantFromContext(r.Context()), id, req.Value, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, measure, http.StatusCreated)
}

func (h *MeasureHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	options, err := h.service.GetOptions(ctx, middleware.GetTenantFromContext(r.Context()), id)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, options, http.StatusOK)
}

func (h *MeasureHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	var req models.SetOptionsRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	options, err := h.service.SetOptions(ctx, middleware.GetTenantFromContext(r.Context()), id, req.Options, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, options, http.StatusOK)
}

func (h *MeasureHandler) DeleteOptions(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.DeleteOptions(ctx, middleware.GetTenantFromContext(r.Context()), id, username); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, map[string]interface{}{"measure_id": id.Hex()}, http.StatusOK)
}

func (h *MeasureHandler) CopyOptionsFromCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	options, err := h.service.CopyOptionsFromCatalog(ctx, middleware.GetTenantFromContext(r.Context()), id, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, options, http.StatusOK)
}

func (h *MeasureHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := h.service.GetCatalog(ctx)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, entries, http.StatusOK)
}

func (h *MeasureHandler) GetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid catalog entry ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entry, err := h.service.GetCatalogEntry(ctx, id)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, entry, http.StatusOK)
}
