package kakao

import (
	"context"
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	var req SkillRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 데이터가 없습니다.")
		return
	}
	req.normalize()
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	reply := s.processor.ProcessMessage(ctx, req.UserRequest.Utterance, req.UserRequest.User.ID)
	s.logger.Debug("Webhook reply",
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("intent", reply.Intent))

	writeJSON(w, http.StatusOK, NewSkillResponse(reply))
}

func (s *Server) test(w http.ResponseWriter, r *http.Request) {
	var req TestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "메시지가 없습니다.")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := s.processor.ProcessMessage(r.Context(), req.Message, "test_user")
	writeJSON(w, http.StatusOK, TestResponse{
		UserMessage: req.Message,
		BotResponse: NewSkillResponse(reply),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.ServiceName,
		"version": s.cfg.Version,
	})
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeError(w, http.StatusNotImplemented, "reload is not available")
		return
	}
	if err := s.reloader.Reload(r.Context()); err != nil {
		s.logger.Error("Corpus reload requested over HTTP failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reloaded",
		"pairs":  s.reloader.Size(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
