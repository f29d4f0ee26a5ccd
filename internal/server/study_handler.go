// Package server provides Connect RPC handlers for the study service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/flashdeck/internal/media"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/session"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

const StudyServiceName = "flashdeck.v1.StudyService"

const (
	StartSessionProcedure = "/" + StudyServiceName + "/StartSession"
	GetSessionProcedure   = "/" + StudyServiceName + "/GetSession"
	SetSelectionProcedure = "/" + StudyServiceName + "/SetSelection"
	NextProcedure         = "/" + StudyServiceName + "/Next"
	RevealProcedure       = "/" + StudyServiceName + "/Reveal"
	GradeProcedure        = "/" + StudyServiceName + "/Grade"
	AnswerProcedure       = "/" + StudyServiceName + "/Answer"
	UnlockBatchProcedure  = "/" + StudyServiceName + "/UnlockBatch"
	SwitchModeProcedure   = "/" + StudyServiceName + "/SwitchMode"
	EndSessionProcedure   = "/" + StudyServiceName + "/EndSession"
)

var ErrSessionNotFound = errors.New("session not found")

// StudyHandler keeps the sessions started by clients in memory. Progress is
// saved through the repository after every change, so a restarted server
// resumes where the clients left off.
//
// Progress is stored per app, so at most one session per app is live.
// Starting an app that already has a live session joins that session.
type StudyHandler struct {
	registry   *study.Registry
	repository progress.Repository
	preloader  media.Preloader
	validate   *validator.Validate
	translator ut.Translator

	mu       sync.Mutex
	sessions map[string]*session.Session
	// live maps an app to the id of its session.
	live map[string]string
}

func NewStudyHandler(registry *study.Registry, repository progress.Repository, preloader media.Preloader) (*StudyHandler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("newValidator() > %w", err)
	}
	return &StudyHandler{
		registry:   registry,
		repository: repository,
		preloader:  preloader,
		validate:   validate,
		translator: trans,
		sessions:   make(map[string]*session.Session),
		live:       make(map[string]string),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate, trans, nil
}

// NewStudyServiceHandler returns the path prefix of the service and its
// handler.
func NewStudyServiceHandler(h *StudyHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, h.StartSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, h.GetSession, opts...))
	mux.Handle(SetSelectionProcedure, connect.NewUnaryHandler(SetSelectionProcedure, h.SetSelection, opts...))
	mux.Handle(NextProcedure, connect.NewUnaryHandler(NextProcedure, h.Next, opts...))
	mux.Handle(RevealProcedure, connect.NewUnaryHandler(RevealProcedure, h.Reveal, opts...))
	mux.Handle(GradeProcedure, connect.NewUnaryHandler(GradeProcedure, h.Grade, opts...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, h.Answer, opts...))
	mux.Handle(UnlockBatchProcedure, connect.NewUnaryHandler(UnlockBatchProcedure, h.UnlockBatch, opts...))
	mux.Handle(SwitchModeProcedure, connect.NewUnaryHandler(SwitchModeProcedure, h.SwitchMode, opts...))
	mux.Handle(EndSessionProcedure, connect.NewUnaryHandler(EndSessionProcedure, h.EndSession, opts...))
	return "/" + StudyServiceName + "/", mux
}

// StartSession restores the saved progress of an app and returns its first
// card together with the rows that can be selected. When the app already has
// a live session, that session is returned instead, switched to the
// requested mode.
func (h *StudyHandler) StartSession(
	ctx context.Context,
	req *connect.Request[StartSessionRequest],
) (*connect.Response[SessionResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	// Held while the session loads so two starts of one app share a session.
	h.mu.Lock()
	defer h.mu.Unlock()

	if id, ok := h.live[req.Msg.App]; ok {
		s := h.sessions[id]
		view := s.View()
		if req.Msg.Mode != "" && req.Msg.Mode != view.Mode {
			var err error
			view, err = s.SwitchMode(ctx, req.Msg.Mode)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
		}
		slog.Default().Debug("session joined",
			slog.String("sessionId", id),
			slog.String("app", req.Msg.App),
		)
		return connect.NewResponse(h.sessionResponse(id, s, view)), nil
	}

	s, err := h.registry.NewSession(ctx, study.SessionOptions{
		App:        req.Msg.App,
		Mode:       req.Msg.Mode,
		Repository: h.repository,
		Preloader:  h.preloader,
	})
	if errors.Is(err, study.ErrUnknownApp) {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("start session(%s): %w", req.Msg.App, err))
	}

	id := uuid.NewString()
	h.sessions[id] = s
	h.live[req.Msg.App] = id

	slog.Default().Debug("session started",
		slog.String("sessionId", id),
		slog.String("app", req.Msg.App),
	)
	return connect.NewResponse(h.sessionResponse(id, s, s.View())), nil
}

func (h *StudyHandler) GetSession(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, s.View())), nil
}

func (h *StudyHandler) SetSelection(
	ctx context.Context,
	req *connect.Request[SetSelectionRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	rowIDs := req.Msg.RowIDs
	if rowIDs == nil {
		rowIDs = []string{}
	}
	view, err := s.SetSelection(ctx, rowIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, view)), nil
}

func (h *StudyHandler) Next(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, s.Next(ctx))), nil
}

// Reveal schedules the answer. Clients poll GetSession until the state is
// revealed when a reveal delay is configured.
func (h *StudyHandler) Reveal(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, s.Reveal())), nil
}

func (h *StudyHandler) Grade(
	ctx context.Context,
	req *connect.Request[GradeRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	view, err := s.Grade(ctx, req.Msg.Correct)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, view)), nil
}

func (h *StudyHandler) Answer(
	ctx context.Context,
	req *connect.Request[AnswerRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	view, err := s.Answer(ctx, req.Msg.Input)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, view)), nil
}

func (h *StudyHandler) UnlockBatch(
	ctx context.Context,
	req *connect.Request[UnlockBatchRequest],
) (*connect.Response[UnlockBatchResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	row, view, err := s.UnlockNext(ctx, req.Msg.Kind)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UnlockBatchResponse{
		SessionID: req.Msg.SessionID,
		Row:       toRowMessage(row),
		View:      toViewMessage(view),
	}), nil
}

func (h *StudyHandler) SwitchMode(
	ctx context.Context,
	req *connect.Request[SwitchModeRequest],
) (*connect.Response[SessionResponse], error) {
	s, err := h.lookup(req.Msg.SessionID, req.Msg)
	if err != nil {
		return nil, err
	}
	view, err := s.SwitchMode(ctx, req.Msg.Mode)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(h.sessionResponse(req.Msg.SessionID, s, view)), nil
}

// EndSession saves the progress and forgets the session.
func (h *StudyHandler) EndSession(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[EndSessionResponse], error) {
	if err := h.validateRequest(req.Msg); err != nil {
		return nil, err
	}

	h.mu.Lock()
	s, ok := h.sessions[req.Msg.SessionID]
	delete(h.sessions, req.Msg.SessionID)
	for app, id := range h.live {
		if id == req.Msg.SessionID {
			delete(h.live, app)
		}
	}
	h.mu.Unlock()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", ErrSessionNotFound, req.Msg.SessionID))
	}

	s.Close(ctx)
	return connect.NewResponse(&EndSessionResponse{}), nil
}

// Shutdown saves and forgets every open session.
func (h *StudyHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*session.Session)
	h.live = make(map[string]string)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(ctx)
	}
	return nil
}

func (h *StudyHandler) lookup(id string, msg any) (*session.Session, error) {
	if err := h.validateRequest(msg); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", ErrSessionNotFound, id))
	}
	return s, nil
}

func (h *StudyHandler) sessionResponse(id string, s *session.Session, view session.View) *SessionResponse {
	cat := s.Catalog()
	app, err := h.registry.App(view.App)
	var modes []string
	if err == nil {
		modes = app.Source.Modes()
	}
	return &SessionResponse{
		SessionID: id,
		View:      toViewMessage(view),
		Modes:     modes,
		Rows:      toRowMessages(cat),
	}
}

func (h *StudyHandler) validateRequest(msg any) *connect.Error {
	err := h.validate.Struct(msg)
	if err == nil {
		return nil
	}

	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var fieldViolations []*errdetails.BadRequest_FieldViolation
		for _, fe := range validationErrors {
			fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       fe.Field(),
				Description: fe.Translate(h.translator),
			})
		}
		if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
			FieldViolations: fieldViolations,
		}); detailErr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrUnknownRow), errors.Is(err, session.ErrUnknownItem):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrNothingToUnlock):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
