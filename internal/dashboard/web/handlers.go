// internal/dashboard/web/handlers.go
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/dashboard/view"
	"churn-dashboard/pkg/registry"
)

const maxRequestBytes = 64 << 10

type fieldInput struct {
	registry.FieldDescriptor
	Value   string
	Checked bool
	Errors  []string
}

type fieldGroup struct {
	Name   string
	Fields []fieldInput
}

type pageData struct {
	Groups       []fieldGroup
	BusyLabel    string
	Result       view.ResultView
	Notification *apperrors.Notification
}

// apiResponse is the body of every /api response.
type apiResponse struct {
	State view.State               `json:"state"`
	View  view.PageView            `json:"view"`
	Error *apperrors.StandardError `json:"error,omitempty"`
}

type fieldRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
	Kind  string      `json:"kind"`
}

// ==========================
// Page handlers
// ==========================

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	s.renderPage(w, ctl.Snapshot())
}

// handleSubmit applies the posted form and runs the submission before
// redirecting back to the page, so a reload never resubmits.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ctl := s.sessions.Resolve(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	s.applyForm(ctl, r.PostForm)

	if _, err := ctl.Submit(r.Context()); err != nil {
		s.logger.Warn("submission did not complete", map[string]interface{}{
			"sessionId": id,
			"error":     err.Error(),
		})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	ctl.Dismiss()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyForm copies posted values into the view. Unchecked checkboxes are not
// posted by browsers and are applied as unchecked.
func (s *Server) applyForm(ctl *view.Controller, values url.Values) {
	for _, f := range s.registry.Fields {
		var err error
		switch {
		case f.Kind == registry.KindCheckbox:
			_, err = ctl.Update(f.Name, values.Get(f.Name), f.Kind)
		case values.Has(f.Name):
			_, err = ctl.Update(f.Name, values.Get(f.Name), f.Kind)
		}
		if err != nil {
			s.logger.Warn("form field not applied", map[string]interface{}{
				"field": f.Name,
				"error": err.Error(),
			})
		}
	}
}

func (s *Server) renderPage(w http.ResponseWriter, st view.State) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.buildPage(view.Render(st))); err != nil {
		s.logger.Error("render page failed", map[string]interface{}{"error": err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) buildPage(pv view.PageView) pageData {
	data := pageData{
		Result:       pv.Result,
		Notification: pv.Notification,
		BusyLabel:    view.SubmitLabelBusy,
	}

	index := make(map[string]int)
	for _, f := range s.registry.Fields {
		in := fieldInput{FieldDescriptor: f, Errors: pv.FieldErrors[f.Name]}
		if v, ok := pv.Form[f.Name]; ok {
			in.Value = fmt.Sprint(v)
			in.Checked = in.Value == "1"
		}

		i, ok := index[f.Group]
		if !ok {
			i = len(data.Groups)
			index[f.Group] = i
			data.Groups = append(data.Groups, fieldGroup{Name: f.Group})
		}
		data.Groups[i].Fields = append(data.Groups[i].Fields, in)
	}
	return data
}

// ==========================
// JSON API handlers
// ==========================

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	s.writeState(w, http.StatusOK, ctl.Snapshot(), nil)
}

func (s *Server) handleAPIField(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)

	var req fieldRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil || req.Field == "" {
		details := "field is required"
		if err != nil {
			details = err.Error()
		}
		s.writeState(w, http.StatusBadRequest, ctl.Snapshot(), apperrors.NewInvalidRequestError(details))
		return
	}
	// Checkbox fields keep the registry kind whatever the client sends.
	if kind := s.registry.KindOf(req.Field); req.Kind == "" || kind == registry.KindCheckbox {
		req.Kind = kind
	}

	st, err := ctl.Update(req.Field, req.Value, req.Kind)
	s.writeState(w, statusFor(err), st, err)
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	st, err := ctl.Submit(r.Context())
	s.writeState(w, statusFor(err), st, err)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	s.writeState(w, http.StatusOK, ctl.Reset(), nil)
}

func (s *Server) handleAPIDismiss(w http.ResponseWriter, r *http.Request) {
	_, ctl := s.sessions.Resolve(w, r)
	s.writeState(w, http.StatusOK, ctl.Dismiss(), nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) writeState(w http.ResponseWriter, status int, st view.State, err error) {
	resp := apiResponse{State: st, View: view.Render(st)}
	if err != nil {
		stdErr, ok := apperrors.AsStandardError(err)
		if !ok {
			stdErr = apperrors.NewInternalError(err)
		}
		resp.Error = stdErr
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case apperrors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeUnknownField, apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeViewClosed:
		return http.StatusGone
	case apperrors.ErrCodeSubmissionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
