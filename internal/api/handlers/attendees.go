package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
)

// AttendeesHandler serves /events/{id}/attendees. The {id} path value is
// always the parent event.
type AttendeesHandler struct {
	Service *attendees.Service
}

func NewAttendeesHandler(service *attendees.Service) *AttendeesHandler {
	return &AttendeesHandler{Service: service}
}

func (h *AttendeesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListByEvent(r.Context(), pathParam(r, "id"))
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, list, "Attendees retrieved successfully")
}

func (h *AttendeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := body[AttendeeCreateRequest](w, r)
	if !ok {
		return
	}
	attendee, err := h.Service.Create(r.Context(), pathParam(r, "id"), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusCreated, attendee, "Attendee added successfully")
}

func (h *AttendeesHandler) Get(w http.ResponseWriter, r *http.Request) {
	attendee, err := h.Service.GetForEvent(r.Context(), pathParam(r, "id"), pathParam(r, "attendeeId"))
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, attendee, "Attendee retrieved successfully")
}

func (h *AttendeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := body[AttendeeUpdateRequest](w, r)
	if !ok {
		return
	}
	attendee, err := h.Service.Update(r.Context(), pathParam(r, "id"), pathParam(r, "attendeeId"), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, attendee, "Attendee updated successfully")
}

func (h *AttendeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id"), pathParam(r, "attendeeId")); err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, emptyData, "Attendee deleted successfully")
}
