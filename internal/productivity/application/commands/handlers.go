package commands

import sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"

var _ sharedApplication.CommandHandler[PinTaskCommand] = (*PinTaskHandler)(nil)

var (
	_ sharedApplication.Command = CreateTaskCommand{}
	_ sharedApplication.Command = CompleteTaskCommand{}
	_ sharedApplication.Command = DeleteTaskCommand{}
	_ sharedApplication.Command = RescheduleTaskCommand{}
)
