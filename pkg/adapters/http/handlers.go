package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/orca/pkg/attachment"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
)

// maxBodySize fits one attachment at its size limit after base64 encoding.
const maxBodySize = 8 << 20

func newSessionID() string {
	return uuid.NewString()
}

// View is the response of every session route.
type View struct {
	SessionID string                   `json:"session_id"`
	Token     string                   `json:"token,omitempty"`
	State     *domain.State            `json:"state"`
	Actions   []domain.ActionRequest   `json:"actions"`
	Terminal  bool                     `json:"terminal"`
	Errors    []domain.ValidationError `json:"errors,omitempty"`
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, state *domain.State, token string, verrs domain.ValidationErrors) {
	actions, terminal, err := s.engine.Render(r.Context(), state)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, status, View{
		SessionID: state.SessionID,
		Token:     token,
		State:     state.Redacted(),
		Actions:   actions,
		Terminal:  terminal,
		Errors:    verrs,
	})
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	return nil
}

// apply runs op on the stored session under its lock, saves the result and
// broadcasts the diff. Validation failures still save the state carrying
// the messages and answer 422 with the full view.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, op func(context.Context, *domain.State) (*domain.State, error)) {
	ctx := r.Context()
	id := sessionFrom(ctx)

	var before *domain.State
	next, err := s.sessions.Update(ctx, id, func(current *domain.State) (*domain.State, error) {
		before = current
		return op(ctx, current)
	})
	if next != nil {
		s.broadcast(before, next)
	}
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) && next != nil {
			s.writeView(w, r, http.StatusUnprocessableEntity, next, "", verrs)
			return
		}
		s.writeFailure(w, r, err)
		return
	}
	s.writeView(w, r, http.StatusOK, next, "", nil)
}

func (s *Server) broadcast(before, after *domain.State) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Warn("failed to encode diff", "session_id", after.SessionID, "err", err)
		return
	}
	s.streams.Broadcast(after.SessionID, string(data))
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "orca-http",
		"version":     strings.TrimSpace(s.version),
		"api_version": apiVersion,
	})
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(rawSpec)
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Catalog().All())
}

func (s *Server) getQuickWhatsApp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": s.engine.QuickWhatsAppLink()})
}

type createRequest struct {
	Profile string `json:"profile"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := decode(r, w, &req); err != nil {
			s.writeFailure(w, r, err)
			return
		}
	}

	id := s.newID()
	state, err := s.sessions.LoadOrStart(r.Context(), id, func(ctx context.Context, id string) (*domain.State, error) {
		return s.engine.Start(ctx, id, req.Profile)
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	token, err := s.issueToken(id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	s.writeView(w, r, http.StatusCreated, state, token, nil)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeView(w, r, http.StatusOK, state, "", nil)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), sessionFrom(r.Context())); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type navigateRequest struct {
	Input string `json:"input"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	input, err := runner.SanitizeInput(req.Input)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Navigate(ctx, st, input)
	})
}

type fieldsRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) setFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	for id, v := range req.Values {
		clean, err := runner.SanitizeInput(v)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		req.Values[id] = clean
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.SetFields(ctx, st, req.Values)
	})
}

type categoryRequest struct {
	Key string `json:"key"`
}

func (s *Server) selectCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.SelectCategory(ctx, st, req.Key)
	})
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.Next)
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.Back)
}

type gotoRequest struct {
	Screen domain.Screen `json:"screen"`
}

func (s *Server) gotoScreen(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Goto(ctx, st, req.Screen)
	})
}

type attachRequest struct {
	Kind       domain.AttachmentKind `json:"kind"`
	Payload    string                `json:"payload"`
	Filename   string                `json:"filename"`
	Transcript string                `json:"transcript"`
}

// decodePayload accepts plain base64 or a data URL.
func decodePayload(payload string) ([]byte, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64", errBadRequest)
	}
	return data, nil
}

func (s *Server) attach(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	data, err := decodePayload(req.Payload)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	switch req.Kind {
	case domain.AttachmentPhoto:
		a, err := attachment.NewPhoto(req.Filename, data)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return s.engine.Attach(ctx, st, a)
		})
	case domain.AttachmentAudio:
		a, transcript, err := attachment.NewVoiceNote(req.Filename, data, req.Transcript, s.now())
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return s.engine.AttachVoiceNote(ctx, st, a, transcript)
		})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown attachment kind %q", req.Kind))
	}
}

func (s *Server) removeAttachment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.RemoveAttachment(ctx, st, index)
	})
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) textOp(w http.ResponseWriter, r *http.Request, op func(context.Context, *domain.State, string) (*domain.State, error)) {
	var req textRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	text, err := runner.SanitizeInput(req.Text)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return op(ctx, st, text)
	})
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	s.textOp(w, r, s.engine.Classify)
}

func (s *Server) advise(w http.ResponseWriter, r *http.Request) {
	s.textOp(w, r, s.engine.Advise)
}

type submitRequest struct {
	Channel domain.Channel `json:"channel"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.apply(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Submit(ctx, st, req.Channel)
	})
}

func (s *Server) restart(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.Restart)
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.Cancel)
}
