package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/explain"
	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

const maxJSONBody = 1 << 20

type scoreRequest struct {
	ClaimText *string         `json:"claim_text"`
	Evidence  []evidenceInput `json:"evidence"`
}

type evidenceInput struct {
	Source  *string `json:"source"`
	Content *string `json:"content"`
	URL     string  `json:"url"`
}

type explainRequest struct {
	ClaimText *string `json:"claim_text"`
	Verdict   string  `json:"verdict"`
	Lang      string  `json:"lang"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

type scanRequest struct {
	SourceURL *string `json:"source_url"`
	Category  string  `json:"category"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusMessage})
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Claims())
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(1 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	req := pipeline.VerifyRequest{
		Text: strings.TrimSpace(r.FormValue("text")),
		Link: strings.TrimSpace(r.FormValue("link")),
	}

	if r.MultipartForm != nil {
		file, _, err := r.FormFile("image")
		switch {
		case err == nil:
			req.Image, err = io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "read image: "+err.Error())
				return
			}
		case !errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, "invalid image: "+err.Error())
			return
		}
	}

	if req.Text == "" && req.Link == "" && len(req.Image) == 0 {
		writeError(w, http.StatusBadRequest, "one of text, link or image is required")
		return
	}

	writeJSON(w, http.StatusOK, s.svc.Verify(r.Context(), req))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ClaimText == nil {
		writeError(w, http.StatusBadRequest, "claim_text is required")
		return
	}

	evidence := make([]model.Evidence, 0, len(req.Evidence))
	for i, e := range req.Evidence {
		if e.Source == nil || e.Content == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("evidence[%d]: source and content are required", i))
			return
		}
		evidence = append(evidence, model.Evidence{Source: *e.Source, Content: *e.Content, URL: e.URL})
	}

	writeJSON(w, http.StatusOK, s.svc.ScoreClaim(r.Context(), *req.ClaimText, evidence))
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ClaimText == nil {
		writeError(w, http.StatusBadRequest, "claim_text is required")
		return
	}
	verdict, ok := model.ParseVerdict(req.Verdict)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown verdict %q", req.Verdict))
		return
	}
	lang := strings.TrimSpace(req.Lang)
	if lang == "" {
		lang = explain.DefaultLanguage
	}

	writeJSON(w, http.StatusOK, explainResponse{
		Explanation: s.svc.Explain(r.Context(), *req.ClaimText, verdict, lang),
	})
}

func (s *Server) handleCrisis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CheckCrisis(r.Context()))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.SourceURL == nil {
		writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}

	job := &worker.ScanJob{
		SourceURL: *req.SourceURL,
		Category:  strings.TrimSpace(req.Category),
		Scanner:   s.svc,
	}
	if s.scans == nil || !s.scans.TrySubmit(job) {
		s.log.Warn("scan rejected", zap.String("source_url", job.SourceURL))
		writeError(w, http.StatusServiceUnavailable, "scan queue unavailable")
		return
	}

	s.log.Debug("scan queued",
		zap.String("source_url", job.SourceURL),
		zap.Int("pending", s.scans.Pending()))
	writeJSON(w, http.StatusAccepted, messageResponse{
		Message: "Scan initiated for " + job.SourceURL,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.AgentStatus())
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
