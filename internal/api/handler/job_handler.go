package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"graphboard/internal/app/service"
	"graphboard/internal/common"
	"graphboard/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type JobHandler struct {
	jobService *service.JobService
	debug      bool
}

func NewJobHandler(js *service.JobService, debug bool) *JobHandler {
	return &JobHandler{jobService: js, debug: debug}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.findJobs)                             // GET /api/jobs
	r.Post("/", h.addJob)                              // POST /api/jobs
	r.Post("/complete", h.completeJobs)                // POST /api/jobs/complete
	r.Post("/permanently-fail", h.permanentlyFailJobs) // POST /api/jobs/permanently-fail
	r.Post("/reschedule", h.rescheduleJobs)            // POST /api/jobs/reschedule
	r.Post("/remove", h.removeJob)                     // POST /api/jobs/remove
}

type jobIDsRequest struct {
	JobIDs []int64 `json:"jobIds"`
}

type permanentlyFailJobsRequest struct {
	JobIDs        []int64 `json:"jobIds"`
	ErrorMessages string  `json:"errorMessages"`
}

type removeJobRequest struct {
	JobKey string `json:"jobKey"`
}

type completeJobsResponse struct {
	CompletedJobs []model.Job `json:"completedJobs"`
}

type permanentlyFailJobsResponse struct {
	PermanentlyFailedJobs []model.Job `json:"permanentlyFailedJobs"`
}

type rescheduleJobsResponse struct {
	RescheduledJobs []model.Job `json:"rescheduledJobs"`
}

type removeJobResponse struct {
	RemovedJob *model.Job `json:"removedJob"`
}

func (h *JobHandler) findJobs(w http.ResponseWriter, r *http.Request) {
	params, err := parseFindJobsParams(r.URL.RawQuery)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.jobService.FindJobs(r.Context(), params)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *JobHandler) addJob(w http.ResponseWriter, r *http.Request) {
	var req model.AddJobData
	if !h.decodeBody(w, r, &req) {
		return
	}

	job, err := h.jobService.AddJob(r.Context(), req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}

func (h *JobHandler) completeJobs(w http.ResponseWriter, r *http.Request) {
	var req jobIDsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	jobs, err := h.jobService.CompleteJobs(r.Context(), req.JobIDs)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, completeJobsResponse{CompletedJobs: jobs})
}

func (h *JobHandler) permanentlyFailJobs(w http.ResponseWriter, r *http.Request) {
	var req permanentlyFailJobsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	jobs, err := h.jobService.PermanentlyFailJobs(r.Context(), req.JobIDs, req.ErrorMessages)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, permanentlyFailJobsResponse{PermanentlyFailedJobs: jobs})
}

func (h *JobHandler) rescheduleJobs(w http.ResponseWriter, r *http.Request) {
	var req model.RescheduleJobsData
	if !h.decodeBody(w, r, &req) {
		return
	}

	jobs, err := h.jobService.RescheduleJobs(r.Context(), req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rescheduleJobsResponse{RescheduledJobs: jobs})
}

func (h *JobHandler) removeJob(w http.ResponseWriter, r *http.Request) {
	var req removeJobRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	job, err := h.jobService.RemoveJob(r.Context(), req.JobKey)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, removeJobResponse{RemovedJob: job})
}

// decodeBody writes a 400 response and returns false when the body is not
// exactly one valid JSON value for dst.
func (h *JobHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.respondWithError(w, fmt.Errorf("%w: %v", common.ErrInvalidBody, err))
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		h.respondWithError(w, fmt.Errorf("%w: %v", common.ErrInvalidBody, err))
		return false
	}
	return true
}

func (h *JobHandler) respondWithError(w http.ResponseWriter, err error) {
	common.RespondWithError(w, err, h.debug)
}
