// Package api is the HTTP transport over the sequence engine.
package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/modelseq/go-modelseq/internal/metrics"
	"github.com/modelseq/go-modelseq/internal/store"
	"github.com/modelseq/go-modelseq/pkg/log"
	"github.com/modelseq/go-modelseq/pkg/sequence"
	"github.com/modelseq/go-modelseq/pkg/sequence/drawer"
)

// Handler carries the engine components the endpoints dispatch to.
type Handler struct {
	exec     *sequence.Executor
	batch    *sequence.Batch
	diagram  drawer.Drawer
	sessions *store.SessionStore
	logger   *log.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(exec *sequence.Executor, batch *sequence.Batch, sessions *store.SessionStore, logger *log.Logger) (*Handler, error) {
	diagram, err := drawer.FromSpec(exec.Spec())
	if err != nil {
		return nil, errors.Wrap(err, "unable to build sequence diagram")
	}

	return &Handler{
		exec:     exec,
		batch:    batch,
		diagram:  diagram,
		sessions: sessions,
		logger:   logger,
	}, nil
}

type inferRequest struct {
	ModelInput []sequence.Field `json:"model_input"`
}

type inferSingleRequest struct {
	ModelID    string           `json:"model_id"`
	ModelInput []sequence.Field `json:"model_input"`
}

type prepareNextRequest struct {
	CurrentModelID string           `json:"current_model_id"`
	CurrentOutput  []sequence.Field `json:"current_output"`
}

type jumpRequest struct {
	StepIndex *int   `json:"step_index,omitempty"`
	ModelID   string `json:"model_id,omitempty"`
}

type stepResponse struct {
	Results            []sequence.Field `json:"results"`
	CurrentModelName   string           `json:"current_model_name"`
	IsSequenceComplete bool             `json:"is_sequence_complete"`
	NextModelID        *string          `json:"next_model_id"`
	Duration           float64          `json:"duration"`
}

func newStepResponse(result *sequence.StepResult) stepResponse {
	resp := stepResponse{
		Results:            result.Output,
		CurrentModelName:   result.StepName,
		IsSequenceComplete: result.IsLast,
		Duration:           result.Duration.Seconds(),
	}
	if !result.IsLast {
		next := result.NextStepID
		resp.NextModelID = &next
	}

	return resp
}

// Health is the liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "modelseq"})
}

// SequenceInfo describes the declared sequence.
func (h *Handler) SequenceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.exec.Spec().Info())
}

// Diagram renders the sequence as DOT.
func (h *Handler) Diagram(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.diagram.Draw(&buf); err != nil {
		h.fail(c, errors.Wrap(err, "unable to draw sequence"))

		return
	}

	c.Data(http.StatusOK, "text/vnd.graphviz", buf.Bytes())
}

// Infer runs the full sequence.
func (h *Handler) Infer(c *gin.Context) {
	var req inferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)

		return
	}

	result, err := h.exec.RunAll(c.Request.Context(), req.ModelInput)
	if err != nil {
		metrics.InferTotal.WithLabelValues("full", "error").Inc()
		h.fail(c, err)

		return
	}
	metrics.InferTotal.WithLabelValues("full", "ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"results":  result.Output,
		"duration": result.Duration.Seconds(),
	})
}

// InferSingle runs one step by id.
func (h *Handler) InferSingle(c *gin.Context) {
	var req inferSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)

		return
	}

	result, err := h.exec.RunStep(c.Request.Context(), req.ModelID, req.ModelInput)
	if err != nil {
		metrics.InferTotal.WithLabelValues("single", "error").Inc()
		h.fail(c, err)

		return
	}
	metrics.InferTotal.WithLabelValues("single", "ok").Inc()
	metrics.StepDuration.WithLabelValues(result.StepID).Observe(result.Duration.Seconds())

	c.JSON(http.StatusOK, newStepResponse(result))
}

// PrepareNext projects a step's output onto the next step's input contract.
func (h *Handler) PrepareNext(c *gin.Context) {
	var req prepareNextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)

		return
	}

	projected, err := h.exec.PrepareNext(req.CurrentModelID, req.CurrentOutput)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"model_input": projected})
}

// InferBatch runs a CSV payload through one step or the full sequence.
// The target step comes from the model_id query parameter; absent means the
// full sequence.
func (h *Handler) InferBatch(c *gin.Context) {
	table, err := sequence.ReadTable(c.Request.Body)
	if err != nil {
		h.badRequest(c, err)

		return
	}

	target := sequence.FullSequence()
	if modelID := c.Query("model_id"); modelID != "" {
		target = sequence.SingleStep(modelID)
	}

	result, err := h.batch.Run(c.Request.Context(), table, target)
	if err != nil {
		metrics.InferTotal.WithLabelValues("batch", "error").Inc()
		h.fail(c, err)

		return
	}
	metrics.InferTotal.WithLabelValues("batch", "ok").Inc()

	rowErrors := make([]gin.H, 0, len(result.RowErrors))
	for _, rowErr := range result.RowErrors {
		rowErrors = append(rowErrors, gin.H{"row": rowErr.Row, "error": rowErr.Err.Error()})
		metrics.BatchRowsTotal.WithLabelValues("failed").Inc()
	}
	metrics.BatchRowsTotal.WithLabelValues("ok").Add(float64(len(result.Table.Rows) - len(result.RowErrors)))

	c.JSON(http.StatusOK, gin.H{
		"columns":    result.Table.Columns,
		"rows":       result.Table.Rows,
		"row_errors": rowErrors,
	})
}

// CreateSession opens a step-by-step session and returns its token.
func (h *Handler) CreateSession(c *gin.Context) {
	session := sequence.NewSession(h.exec)
	token := h.sessions.Create(session)

	c.JSON(http.StatusCreated, h.sessionState(token, session))
}

// GetSession reports a session's position.
func (h *Handler) GetSession(c *gin.Context) {
	token := c.Param("id")
	session, err := h.sessions.Get(token)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, h.sessionState(token, session))
}

// RunSession runs the session's current step without advancing.
func (h *Handler) RunSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)

		return
	}

	var req inferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)

		return
	}

	result, err := session.RunCurrent(c.Request.Context(), req.ModelInput)
	if err != nil {
		metrics.InferTotal.WithLabelValues("single", "error").Inc()
		h.fail(c, err)

		return
	}
	metrics.InferTotal.WithLabelValues("single", "ok").Inc()
	metrics.StepDuration.WithLabelValues(result.StepID).Observe(result.Duration.Seconds())

	c.JSON(http.StatusOK, newStepResponse(result))
}

// AdvanceSession moves the session to the next step and returns its
// pre-filled input.
func (h *Handler) AdvanceSession(c *gin.Context) {
	token := c.Param("id")
	session, err := h.sessions.Get(token)
	if err != nil {
		h.fail(c, err)

		return
	}

	prefilled, err := session.Advance()
	if err != nil {
		h.fail(c, err)

		return
	}

	state := h.sessionState(token, session)
	state["model_input"] = prefilled
	c.JSON(http.StatusOK, state)
}

// JumpSession re-enters the sequence at an arbitrary step, by index or by
// model id.
func (h *Handler) JumpSession(c *gin.Context) {
	token := c.Param("id")
	session, err := h.sessions.Get(token)
	if err != nil {
		h.fail(c, err)

		return
	}

	var req jumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)

		return
	}

	idx := -1
	switch {
	case req.StepIndex != nil:
		idx = *req.StepIndex
	case req.ModelID != "":
		for i := range h.exec.Spec().Steps {
			if h.exec.Spec().Steps[i].ID == req.ModelID {
				idx = i

				break
			}
		}
		if idx < 0 {
			h.fail(c, &sequence.UnknownStepError{ID: req.ModelID})

			return
		}
	default:
		h.badRequest(c, errors.New("step_index or model_id must be set"))

		return
	}

	if err := session.JumpTo(idx); err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, h.sessionState(token, session))
}

// ResetSession returns the session to the first step.
func (h *Handler) ResetSession(c *gin.Context) {
	token := c.Param("id")
	session, err := h.sessions.Get(token)
	if err != nil {
		h.fail(c, err)

		return
	}

	session.Reset()
	c.JSON(http.StatusOK, h.sessionState(token, session))
}

// DeleteSession discards the session.
func (h *Handler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionState(token string, session *sequence.Session) gin.H {
	state := gin.H{
		"session_id":           token,
		"step_index":           session.StepIndex(),
		"is_sequence_complete": session.Complete(),
	}
	if stepID, ok := session.CurrentStepID(); ok {
		state["current_model_id"] = stepID
	}

	return state
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fail maps engine errors onto HTTP statuses with enough structure for the
// caller to act on.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		unknownStep *sequence.UnknownStepError
		mismatch    *sequence.TypeMismatchError
		unknown     *sequence.UnknownFieldError
		missing     *sequence.MissingColumnsError
		batchKind   *sequence.BatchKindError
		computation *sequence.ComputationError
		rowErr      *sequence.RowError
	)

	switch {
	case errors.As(err, &unknownStep):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "step_id": unknownStep.ID})
	case errors.Is(err, store.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &computation):
		h.logger.Error("computation failed", "step_id", computation.StepID, "error", computation.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "step_id": computation.StepID})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": mismatch.Field})
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": unknown.Field})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "columns": missing.Columns})
	case errors.As(err, &batchKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "step_id": batchKind.StepID, "field": batchKind.Field})
	case errors.As(err, &rowErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "row": rowErr.Row})
	case errors.Is(err, sequence.ErrNoNextStep), errors.Is(err, sequence.ErrSessionComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
