package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/focus"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// PinTaskCommand pins an active task as the focus task. An empty TaskID
// clears the pin.
type PinTaskCommand struct {
	TaskID string
}

func (PinTaskCommand) CommandName() string { return "pin_task" }

// PinTaskHandler handles the PinTaskCommand.
type PinTaskHandler struct {
	pins    focus.Repository
	tracker *services.FocusTracker
}

// NewPinTaskHandler creates a new PinTaskHandler.
func NewPinTaskHandler(pins focus.Repository, tracker *services.FocusTracker) *PinTaskHandler {
	return &PinTaskHandler{pins: pins, tracker: tracker}
}

// Handle executes the PinTaskCommand.
func (h *PinTaskHandler) Handle(ctx context.Context, cmd PinTaskCommand) error {
	session := h.tracker.Session()
	if cmd.TaskID != "" {
		if _, ok := session.Get(cmd.TaskID); !ok {
			return fmt.Errorf("pin task %s: %w", cmd.TaskID, task.ErrTaskNotFound)
		}
	}

	if err := h.pins.SetPinned(ctx, session.UserID(), cmd.TaskID); err != nil {
		return fmt.Errorf("pin task %s: %w: %w", cmd.TaskID, services.ErrStoreFailure, err)
	}
	session.Pin(cmd.TaskID)
	h.tracker.Recompute()
	return nil
}
