package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
}

func NewEventsHandler(service *events.Service) *EventsHandler {
	return &EventsHandler{Service: service}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, list, "Events retrieved successfully")
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, event, "Event retrieved successfully")
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := body[EventCreateRequest](w, r)
	if !ok {
		return
	}
	event, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusCreated, event, "Event created successfully")
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := body[EventUpdateRequest](w, r)
	if !ok {
		return
	}
	event, err := h.Service.Update(r.Context(), pathParam(r, "id"), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, event, "Event updated successfully")
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id")); err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, emptyData, "Event deleted successfully")
}
