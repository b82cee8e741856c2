package http

import (
	"leadrouter/internal/jobs"
	"leadrouter/internal/model"
)

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// EnqueueResponse is returned when a lead has been accepted for
// background processing.
type EnqueueResponse struct {
	Success bool              `json:"success"`
	TaskID  string            `json:"taskId"`
	Request model.LeadRequest `json:"request"`
}

type StatusResponse struct {
	Success bool        `json:"success"`
	TaskID  string      `json:"taskId"`
	Status  jobs.Status `json:"status"`
}

type CancelResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
}

type LeadsResponse struct {
	Success bool                  `json:"success"`
	Leads   []model.ProcessedLead `json:"leads"`
}
