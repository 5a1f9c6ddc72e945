package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
)

// ReminderHandler handles follow-up reminder endpoints
type ReminderHandler struct {
	reminders *services.ReminderService
	log       *zap.Logger
}

func NewReminderHandler(reminders *services.ReminderService, log *zap.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, log: log}
}

type createReminderRequest struct {
	LeadID       string `json:"leadId"`
	AssignedTo   string `json:"assignedTo"`
	Note         string `json:"note"`
	ReminderDate string `json:"reminderDate"` // YYYY-MM-DD
	ReminderTime string `json:"reminderTime"` // HH:mm
}

// CreateReminder schedules a follow-up on a lead
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req createReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.ReminderDate)
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorBody{
			Error: errorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "reminderDate must be YYYY-MM-DD",
			},
		})
		return
	}

	reminder, err := h.reminders.Create(r.Context(), caller, services.CreateReminderInput{
		LeadRef:      req.LeadID,
		AssignedTo:   req.AssignedTo,
		Note:         req.Note,
		ReminderDate: date,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    reminder,
	})
}

// DueReminders returns the caller's reminders that have fired
func (h *ReminderHandler) DueReminders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	due, err := h.reminders.Due(r.Context(), caller, time.Now())
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    due,
	})
}

// SnoozeReminder pushes a reminder to a later time
func (h *ReminderHandler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Until time.Time `json:"until"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	reminder, err := h.reminders.Snooze(r.Context(), caller, mux.Vars(r)["id"], req.Until)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    reminder,
	})
}

// CompleteReminder marks a reminder done
func (h *ReminderHandler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	reminder, err := h.reminders.Complete(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    reminder,
	})
}

// DismissReminder closes a reminder without completing it
func (h *ReminderHandler) DismissReminder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	reminder, err := h.reminders.Dismiss(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    reminder,
	})
}
