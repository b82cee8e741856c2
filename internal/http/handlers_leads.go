package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"leadrouter/internal/jobs"
	"leadrouter/internal/leads"
	"leadrouter/internal/model"
	"leadrouter/internal/store"
)

// enqueueLeadHandler validates an inbound lead and queues it for
// processing. The response carries the task ID to poll.
func enqueueLeadHandler(c *fiber.Ctx) error {
	queue := c.Locals("queue").(*jobs.Queue)
	validator := c.Locals("validator").(*leads.Validator)

	var req model.LeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid request body",
		})
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Error:   "Lead failed validation",
			Details: errs,
		})
	}

	id := queue.Enqueue(leads.TaskKind, req)
	c.Locals("task_id", id.String())

	return c.Status(fiber.StatusAccepted).JSON(EnqueueResponse{
		Success: true,
		TaskID:  id.String(),
		Request: req,
	})
}

// listLeadsHandler returns processed leads. An email filter wins over a
// phone filter; with neither, every stored lead is returned.
func listLeadsHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(store.LeadStore)
	ctx := c.Context()

	email := strings.TrimSpace(c.Query("email"))
	phone := strings.TrimSpace(c.Query("phone"))

	var (
		lead model.ProcessedLead
		err  error
	)
	switch {
	case email != "":
		lead, err = st.GetLeadByEmail(ctx, email)
	case phone != "":
		lead, err = st.GetLeadByPhone(ctx, phone)
	default:
		all, err := st.ListLeads(ctx)
		if err != nil {
			return internalError(c, err)
		}
		if all == nil {
			all = []model.ProcessedLead{}
		}
		return c.JSON(LeadsResponse{Success: true, Leads: all})
	}

	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "Lead not found",
		})
	}
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(LeadsResponse{Success: true, Leads: []model.ProcessedLead{lead}})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Error:   err.Error(),
	})
}
