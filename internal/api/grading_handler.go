package api

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/redinklabs/redink-api/internal/api/shared"
	"github.com/redinklabs/redink-api/internal/grading"
	"github.com/redinklabs/redink-api/internal/task"
)

const (
	// maxEssaysPerBatch bounds how many essays one request may submit.
	maxEssaysPerBatch = 50

	// maxUploadBytes bounds the total multipart form size.
	maxUploadBytes = 64 << 20
)

// BatchProcessor drives a grading batch. Implemented by grading.Engine.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, promptImage []byte, essayImages [][]byte, onProgress grading.ProgressFunc) (*grading.BatchReport, error)
}

// TaskEngine exposes task submission and status queries. Implemented
// by task.Manager.
type TaskEngine interface {
	Submit(totalCount int, work task.WorkFunc) uuid.UUID
	GetStatus(id uuid.UUID) (task.Snapshot, bool)
}

// SubmitBatchResponse is the 202 payload for a submitted batch.
type SubmitBatchResponse struct {
	TaskID      uuid.UUID `json:"task_id"`
	TotalEssays int       `json:"total_essays"`
}

// GradingHandler handles grading-related HTTP requests.
type GradingHandler struct {
	processor BatchProcessor
	engine    TaskEngine
	logger    *slog.Logger
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(processor BatchProcessor, engine TaskEngine, logger *slog.Logger) *GradingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GradingHandler{
		processor: processor,
		engine:    engine,
		logger:    logger.With(slog.String("component", "grading_handler")),
	}
}

// SubmitBatch handles POST /api/grading/batch requests. The multipart
// form carries one "prompt" image (the essay requirements) and up to
// maxEssaysPerBatch "essays" images. The batch is submitted to the
// task engine and the response returns 202 with the task id to poll.
func (h *GradingHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	promptImage, err := readFormFile(r, "prompt")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or unreadable prompt image")
		return
	}

	essayHeaders := r.MultipartForm.File["essays"]
	if len(essayHeaders) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No essay images provided")
		return
	}
	if len(essayHeaders) > maxEssaysPerBatch {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Too many essays in one batch")
		return
	}

	essayImages := make([][]byte, 0, len(essayHeaders))
	for _, header := range essayHeaders {
		data, err := readMultipartFile(header)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unreadable essay image: "+header.Filename)
			return
		}
		essayImages = append(essayImages, data)
	}

	taskID := h.engine.Submit(len(essayImages), func(ctx context.Context, report task.ProgressFunc) (any, error) {
		return h.processor.ProcessBatch(ctx, promptImage, essayImages, grading.ProgressFunc(report))
	})

	h.logger.Info("batch submitted",
		"task_id", taskID,
		"total_essays", len(essayImages))

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitBatchResponse{
		TaskID:      taskID,
		TotalEssays: len(essayImages),
	})
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}
