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

type MeasureLinkHandler struct {
	service service.MeasureLinkService
}

func NewMeasureLinkHandler(service service.MeasureLinkService) *MeasureLinkHandler {
	return &MeasureLinkHandler{
		service: service,
	}
}

func (h *MeasureLinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMeasureLinkRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	link, err := h.service.CreateLink(ctx, tenantID, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, link, http.StatusCreated)
}

func (h *MeasureLinkHandler) GetLinkByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid link ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	link, err := h.service.GetLinkByID(ctx, middleware.GetTenantFromContext(r.Context()), id)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, link, http.StatusOK)
}

func (h *MeasureLinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid link ID format", http.StatusBadRequest)
		return
	}

	var req models.UpdateMeasureLinkRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	// Owner propagation may fan out across the measure's whole link set.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	link, err := h.service.UpdateLink(ctx, tenantID, id, &req, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, link, http.StatusOK)
}

func (h *MeasureLinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.HandleErrorMessage(w, "Invalid link ID format", http.StatusBadRequest)
		return
	}

	tenantID := middleware.GetTenantFromContext(r.Context())
	username := middleware.GetUsernameFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.service.DeleteLink(ctx, tenantID, id, username)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, result, http.StatusOK)
}

func (h *MeasureLinkHandler) QueryLinks(w http.ResponseWriter, r *http.Request) {
	var filter models.LinkQueryFilter
	query := r.URL.Query()

	parseFilterID := func(param string) (*primitive.ObjectID, bool) {
		value := query.Get(param)
		if value == "" {
			return nil, true
		}
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			utils.HandleErrorMessage(w, "Invalid "+param+" format", http.StatusBadRequest)
			return nil, false
		}
		return &id, true
	}

	var ok bool
	if filter.MeasureID, ok = parseFilterID("measure_id"); !ok {
		return
	}
	if filter.PersonID, ok = parseFilterID("person_id"); !ok {
		return
	}
	if filter.GoalID, ok = parseFilterID("goal_id"); !ok {
		return
	}
	if filter.StrategyID, ok = parseFilterID("strategy_id"); !ok {
		return
	}
	filter.IncludeAll = query.Get("include_all") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	links, err := h.service.QueryLinks(ctx, middleware.GetTenantFromContext(r.Context()), filter)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, links, http.StatusOK)
}

func (h *MeasureLinkHandler) GetLinkTypeDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	distribution, err := h.service.GetLinkTypeDistribution(ctx, middleware.GetTenantFromContext(r.Context()))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, distribution, http.StatusOK)
}
