package handlers

import (
	"net/http"
	"strings"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/domain/tickets"
)

type TicketsHandler struct {
	Service *tickets.Service
}

func NewTicketsHandler(service *tickets.Service) *TicketsHandler {
	return &TicketsHandler{Service: service}
}

// List accepts optional eventId and attendeeId query filters.
func (h *TicketsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := tickets.ListFilter{
		EventID:    strings.TrimSpace(query.Get("eventId")),
		AttendeeID: strings.TrimSpace(query.Get("attendeeId")),
	}
	list, err := h.Service.List(r.Context(), filter)
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, list, "Tickets retrieved successfully")
}

func (h *TicketsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, ticket, "Ticket retrieved successfully")
}

func (h *TicketsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := body[TicketCreateRequest](w, r)
	if !ok {
		return
	}
	ticket, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusCreated, ticket, "Ticket created successfully")
}

func (h *TicketsHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := body[TicketUpdateRequest](w, r)
	if !ok {
		return
	}
	ticket, err := h.Service.Update(r.Context(), pathParam(r, "id"), req.input())
	if err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, ticket, "Ticket updated successfully")
}

func (h *TicketsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id")); err != nil {
		envelope.WriteError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, emptyData, "Ticket deleted successfully")
}
