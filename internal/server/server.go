package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/core/community"
	"github.com/agenthands/fuxi/internal/core/inference"
	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/core/summary"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/metrics"
	"github.com/agenthands/fuxi/internal/store"
	"github.com/agenthands/fuxi/internal/validation"
)

// maxLucidUpload caps the size of an uploaded Lucid export.
const maxLucidUpload = 32 << 20

type Server struct {
	Config     *config.Config
	Harmonizer *core.Harmonizer
	Views      *store.Views
	Metrics    *metrics.Registry
	AI         *inference.AIInferer
	Summarizer *summary.Summarizer
	Detector   community.Detector

	// Concurrent run requests for the same mode and project share one run.
	runs singleflight.Group
}

func NewServer(c *Components) *Server {
	s := &Server{
		Config:     c.Config,
		Harmonizer: c.Harmonizer,
		Views:      c.Views,
		Metrics:    c.Metrics,
		AI:         c.AI,
		Summarizer: c.Summarizer,
		Detector:   c.Detector,
	}
	if s.Detector == nil {
		s.Detector = community.NewDetector()
	}
	if s.Summarizer == nil {
		s.Summarizer = summary.NewSummarizer(nil, c.Config.Prompts)
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	api := r.Group("/api")
	{
		h := api.Group("/harmonization")
		h.POST("/run", s.Run)
		h.GET("/graph", s.Graph)
		h.POST("/connections", s.Connections)
		h.POST("/ai-inference", s.AIInference)
		h.GET("/clusters", s.Clusters)

		de := api.Group("/digital-enterprise")
		de.GET("", s.ListProjects)
		de.GET("/:project", s.GetProject)
		de.POST("/:project/lucid", s.UploadLucid)
	}

	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// observe logs each request and records it in the HTTP metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.Metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		log := logging.FromContext(c.Request.Context())
		evt := log.Debug()
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("HTTP request")
	}
}

type runOutcome struct {
	res *core.Result
	err error
}

// harmonize runs the pipeline, sharing the run with any concurrent caller
// asking for the same mode and project.
func (s *Server) harmonize(ctx context.Context, opts core.Options) (*core.Result, error) {
	key := string(opts.Mode) + "/" + opts.ProjectID
	v, _, _ := s.runs.Do(key, func() (interface{}, error) {
		// Detached so one caller hanging up does not cancel the others.
		res, err := s.Harmonizer.Harmonize(context.WithoutCancel(ctx), opts)
		return runOutcome{res: res, err: err}, nil
	})
	out := v.(runOutcome)
	return out.res, out.err
}

// fullGraph returns the persisted graph, running the pipeline when nothing
// has been persisted yet.
func (s *Server) fullGraph(ctx context.Context) (model.HarmonizedGraph, error) {
	g, err := core.ReadGraph(s.Harmonizer.GraphPath())
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, fuxierr.ErrNotFound) {
		return model.HarmonizedGraph{}, err
	}
	res, err := s.harmonize(ctx, core.Options{Mode: model.ModeAll, ProjectID: core.DefaultProject})
	if res == nil {
		return model.HarmonizedGraph{}, err
	}
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Using unpersisted graph")
	}
	return res.Full, nil
}

type runResponse struct {
	*core.Result
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) Run(c *gin.Context) {
	var req validation.HarmonizeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}
	if err := validation.ValidateHarmonizeRequest(&req); err != nil {
		writeError(c, err)
		return
	}

	// Empty mode falls through to the configured default.
	mode := model.Mode(req.Mode)
	projectID := req.ProjectID
	if projectID == "" {
		projectID = core.DefaultProject
	}

	res, err := s.harmonize(c.Request.Context(), core.Options{Mode: mode, ProjectID: projectID})
	if res == nil {
		writeError(c, err)
		return
	}
	resp := runResponse{Result: res}
	if err != nil {
		resp.Warnings = append(resp.Warnings, err.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Graph(c *gin.Context) {
	modeParam := c.Query("mode")
	if err := validation.ValidateMode(modeParam); err != nil {
		writeError(c, err)
		return
	}
	mode, _ := model.ParseMode(modeParam)

	g, err := core.ReadGraph(s.Harmonizer.GraphPath())
	if err != nil {
		writeError(c, err)
		return
	}
	filtered := core.FilterByMode(g, mode)
	c.JSON(http.StatusOK, gin.H{
		"mode":  mode,
		"graph": filtered,
		"stats": g.Stats(),
	})
}

func (s *Server) thresholdFrom(c *gin.Context) (float64, bool) {
	var req validation.ThresholdRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return 0, false
		}
	}
	if err := validation.ValidateThresholdRequest(&req); err != nil {
		writeError(c, err)
		return 0, false
	}
	if req.Threshold == nil {
		return s.Config.Harmonization.ConnectionThreshold, true
	}
	return *req.Threshold, true
}

func (s *Server) Connections(c *gin.Context) {
	threshold, ok := s.thresholdFrom(c)
	if !ok {
		return
	}
	g, err := s.fullGraph(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	suggestions := inference.InferConnections(g.Nodes, g.Edges, threshold)
	s.Metrics.RecordSuggestions("heuristic", len(suggestions))
	c.JSON(http.StatusOK, gin.H{"threshold": threshold, "suggestions": suggestions})
}

func (s *Server) AIInference(c *gin.Context) {
	if s.AI == nil || s.AI.LLM == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI inference is not configured"})
		return
	}
	threshold, ok := s.thresholdFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	g, err := s.fullGraph(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	suggestions, err := s.AI.Suggest(ctx, g, threshold)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("AI inference failed")
		if errors.Is(err, fuxierr.ErrUnavailable) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI inference failed"})
		return
	}
	s.Metrics.RecordSuggestions("ai", len(suggestions))
	c.JSON(http.StatusOK, gin.H{"threshold": threshold, "suggestions": suggestions})
}

func (s *Server) Clusters(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := s.fullGraph(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	clusters, err := core.Clusters(ctx, g, s.Detector, s.Summarizer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func (s *Server) ListProjects(c *gin.Context) {
	projects, err := s.Views.Projects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) GetProject(c *gin.Context) {
	projectID := c.Param("project")
	if err := validation.ValidateProjectID(projectID); err != nil {
		writeError(c, err)
		return
	}
	view, err := s.Views.Get(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) UploadLucid(c *gin.Context) {
	projectID := c.Param("project")
	if err := validation.ValidateProjectID(projectID); err != nil {
		writeError(c, err)
		return
	}
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxLucidUpload)
	view, err := s.Harmonizer.IngestLucid(c.Request.Context(), projectID, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal error"
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "Upload too large"
	case errors.Is(err, fuxierr.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, fuxierr.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, fuxierr.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		logging.FromContext(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}
