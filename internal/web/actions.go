package web

import (
	"errors"
	"net/http"
	"strings"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
)

// One-shot notices shown above the grid after a redirect.
const (
	noticeDuplicate     = "An appointment already exists on this day."
	noticeTitleRequired = "A title is required."
	noticeNoDraft       = "Select a day first."
	noticeGone          = "That appointment no longer exists."
	noticeNothingToUndo = "Nothing to undo."
	noticeDeleted       = "Appointment deleted."
)

// act runs fn under the store lock, then sends the browser back to the
// month page. Contract violations (malformed keys, unknown fields) become
// 400 responses; everything user-facing is reported through s.notice.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func() error) {
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()

	if err != nil {
		if isContractViolation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("action failed", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "action failed")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func isContractViolation(err error) bool {
	return errors.Is(err, calendar.ErrInvalidDate) ||
		errors.Is(err, calendar.ErrInvalidDateKey) ||
		errors.Is(err, appointment.ErrUnknownField)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, s.store.PrevMonth)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, s.store.NextMonth)
}

func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	key := calendar.DateKey(r.FormValue("key"))
	s.act(w, r, func() error {
		return s.store.SelectEmptyDay(key)
	})
}

func (s *Server) handleSelectAppointment(w http.ResponseWriter, r *http.Request) {
	key := calendar.DateKey(r.FormValue("key"))
	s.act(w, r, func() error {
		if !key.Valid() {
			return calendar.ErrInvalidDateKey
		}
		if !s.store.SelectAppointment(key) {
			s.notice = noticeGone
		}
		return nil
	})
}

// applyDraft copies the posted form fields into the draft.
func (s *Server) applyDraft(r *http.Request) (title string, err error) {
	title = r.FormValue("title")
	if err := s.store.EditField(appointment.FieldTitle, title); err != nil {
		return title, err
	}
	if err := s.store.EditField(appointment.FieldDescription, r.FormValue("description")); err != nil {
		return title, err
	}
	return title, nil
}

func (s *Server) handleSubmitCreate(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func() error {
		if s.store.Snapshot().Panel != appointment.PanelCreating {
			s.notice = noticeNoDraft
			return nil
		}
		title, err := s.applyDraft(r)
		if err != nil {
			return err
		}
		if strings.TrimSpace(title) == "" {
			s.notice = noticeTitleRequired
			return nil
		}

		err = s.store.SubmitCreate()
		switch {
		case errors.Is(err, appointment.ErrDuplicateAppointment):
			s.notice = noticeDuplicate
			return nil
		case errors.Is(err, appointment.ErrNoDraft):
			s.notice = noticeNoDraft
			return nil
		}
		return err
	})
}

func (s *Server) handleSubmitUpdate(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func() error {
		if s.store.Snapshot().Panel != appointment.PanelEditing {
			s.notice = noticeNoDraft
			return nil
		}
		title, err := s.applyDraft(r)
		if err != nil {
			return err
		}
		if strings.TrimSpace(title) == "" {
			s.notice = noticeTitleRequired
			return nil
		}
		if !s.store.SubmitUpdate() {
			s.notice = noticeGone
		}
		return nil
	})
}

func (s *Server) handleRequestEdit(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func() error {
		s.store.RequestEdit()
		return nil
	})
}

// handleRequestDelete takes the answer of the browser's confirm dialog
// from the form: confirm=yes deletes, anything else keeps the appointment.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	answer := appointment.Answer(r.FormValue("confirm") == "yes")
	s.act(w, r, func() error {
		key := s.store.Snapshot().Draft.ID
		s.store.RequestDelete(answer)
		if answer && key != "" {
			if _, still := s.store.Lookup(key); !still {
				s.notice = noticeDeleted
			}
		}
		return nil
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func() error {
		s.store.Cancel()
		return nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func() error {
		if errors.Is(s.store.Undo(), appointment.ErrNothingToUndo) {
			s.notice = noticeNothingToUndo
		}
		return nil
	})
}
