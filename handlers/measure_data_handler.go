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

type MeasureDataHandler struct {
	service service.MeasureDataService
}

func NewMeasureDataHandler(service service.MeasureDataService) *MeasureDataHandler {
	return &MeasureDataHandler{
		service: service,
	}
}

func (h *MeasureDataHandler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	measureID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	var req models.CreateTargetRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	target, err := h.service.CreateTarget(ctx, tenantID, measureID, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, target, http.StatusCreated)
}

func (h *MeasureDataHandler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	targetID, err := primitive.ObjectIDFromHex(r.PathValue("targetId"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid target ID format", http.StatusBadRequest)
		return
	}

	var req models.UpdateTargetRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	target, err := h.service.UpdateTarget(ctx, tenantID, targetID, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, target, http.StatusOK)
}

func (h *MeasureDataHandler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	targetID, err := primitive.ObjectIDFromHex(r.PathValue("targetId"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid target ID format", http.StatusBadRequest)
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.DeleteTarget(ctx, tenantID, targetID, username); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, map[string]interface{}{"deleted_id": targetID.Hex()}, http.StatusOK)
}

func (h *MeasureDataHandler) CreateActual(w http.ResponseWriter, r *http.Request) {
	measureID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	var req models.CreateActualRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actual, err := h.service.CreateActual(ctx, tenantID, measureID, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, actual, http.StatusCreated)
}

func (h *MeasureDataHandler) OverrideActual(w http.ResponseWriter, r *http.Request) {
	actualID, err := primitive.ObjectIDFromHex(r.PathValue("actualId"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid actual ID format", http.StatusBadRequest)
		return
	}

	var req models.OverrideActualRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actual, err := h.service.OverrideActual(ctx, tenantID, actualID, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, actual, http.StatusOK)
}

func (h *MeasureDataHandler) DeleteActual(w http.ResponseWriter, r *http.Request) {
	actualID, err := primitive.ObjectIDFromHex(r.PathValue("actualId"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid actual ID format", http.StatusBadRequest)
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.DeleteActual(ctx, tenantID, actualID, username); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, map[string]interface{}{"deleted_id": actualID.Hex()}, http.StatusOK)
}

func (h *MeasureDataHandler) GetAllSeries(w http.ResponseWriter, r *http.Request) {
	measureID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	series, err := h.service.GetAllSeries(ctx, middleware.GetTenantFromContext(r.Context()), measureID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, series, http.StatusOK)
}

func (h *MeasureDataHandler) GetSeriesStats(w http.ResponseWriter, r *http.Request) {
	measureID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid measure ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	seriesStats, err := h.service.GetSeriesStats(ctx, middleware.GetTenantFromContext(r.Context()), measureID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, seriesStats, http.StatusOK)
}
