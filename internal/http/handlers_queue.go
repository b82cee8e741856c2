package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"leadrouter/internal/jobs"
)

// parseTaskID reads the taskId query parameter. ok is false when the
// error response has already been written.
func parseTaskID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	raw := c.Query("taskId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "taskId must be a valid UUID",
		})
	}
	c.Locals("task_id", id.String())
	return id, true, nil
}

// cancelTaskHandler requests cancellation of a queued or running task.
func cancelTaskHandler(c *fiber.Ctx) error {
	queue := c.Locals("queue").(*jobs.Queue)

	id, ok, err := parseTaskID(c)
	if !ok {
		return err
	}

	if !queue.Cancel(id) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "Task not found or already finished",
		})
	}

	return c.JSON(CancelResponse{
		Success: true,
		TaskID:  id.String(),
		Message: "Task cancellation requested",
	})
}

// taskStatusHandler reports a task's lifecycle status. Unknown and
// evicted tasks read as failed.
func taskStatusHandler(c *fiber.Ctx) error {
	queue := c.Locals("queue").(*jobs.Queue)

	id, ok, err := parseTaskID(c)
	if !ok {
		return err
	}

	return c.JSON(StatusResponse{
		Success: true,
		TaskID:  id.String(),
		Status:  queue.Status(id),
	})
}
