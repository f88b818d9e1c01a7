// Package server exposes workflow dispatch over HTTP.
//
// `driftrun serve` loads the workflows directory once and serves manual
// dispatch requests: POST /workflows/:name/dispatch runs the named workflow
// synchronously and returns its run summary. This is the same trigger model
// as the CLI `run` command, reachable from other machines.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"driftrun/internal/engine"
	"driftrun/internal/workflow"
)

// RunFunc executes a workflow with the given inputs. The CLI wires this to a
// fully configured [engine.Executor] with its secret stores and hooks.
type RunFunc func(ctx context.Context, wf *workflow.Workflow, inputs map[string]string) (*engine.RunResult, error)

// Server routes dispatch requests to workflows.
type Server struct {
	workflows map[string]*workflow.Workflow
	run       RunFunc
	logger    *slog.Logger
	router    *gin.Engine
}

// dispatchRequest is the POST body for a workflow dispatch.
type dispatchRequest struct {
	Inputs map[string]string `json:"inputs"`
}

// workflowInfo is the GET /workflows list entry.
type workflowInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
}

// New builds a Server over a loaded workflow set.
func New(workflows map[string]*workflow.Workflow, run RunFunc, logger *slog.Logger) *Server {
	s := &Server{
		workflows: workflows,
		run:       run,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/workflows", s.handleList)
	router.POST("/workflows/:name/dispatch", s.handleDispatch)

	s.router = router
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("dispatch server listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	infos := make([]workflowInfo, 0, len(s.workflows))
	for _, wf := range s.workflows {
		infos = append(infos, workflowInfo{
			Name:        wf.Name,
			Description: wf.Description,
			Steps:       len(wf.Steps),
		})
	}
	c.JSON(http.StatusOK, gin.H{"workflows": infos})
}

func (s *Server) handleDispatch(c *gin.Context) {
	name := c.Param("name")

	wf, ok := s.workflows[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown workflow: " + name})
		return
	}

	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid dispatch body: " + err.Error()})
		return
	}

	result, err := s.run(c.Request.Context(), wf, req.Inputs)
	if err != nil {
		// The run never started: bad inputs or unresolved secrets
		s.logger.Error("dispatch rejected",
			"workflow", name,
			"error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !result.Passed {
		s.logger.Error("workflow run failed",
			"workflow", name,
			"run_id", result.RunID,
			"failed_step", result.FailedStep)
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	s.logger.Info("workflow run passed",
		"workflow", name,
		"run_id", result.RunID)
	c.JSON(http.StatusOK, result)
}
