package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
)

const nextStepPrompt = `Read the nudge://focus resource and look at the first task only.

Tell me in one sentence what it is, then suggest the smallest first
step I could take in the next five minutes. If the task has subtasks,
pick the first one. Do not list the other tasks unless I ask.

If I say I can't do it now, snooze it with task.reschedule and tell me
what the new focus task is.`

const triagePrompt = `Go through nudge://tasks/active one task at a time, oldest first.

For each task ask me whether it is done, still needed, or not needed.
Use task.complete for done tasks and task.delete for tasks that are
not needed. Keep your questions short and stop after ten tasks.`

func registerPrompts(srv *mcp.Server) {
	srv.Prompt("next_step").
		Description("Pick the one thing to do now and break it into a first small step.").
		Handler(staticPrompt("Next step", nextStepPrompt))

	srv.Prompt("triage").
		Description("Walk through the active list and clean it up.").
		Handler(staticPrompt("Triage", triagePrompt))
}

// staticPrompt answers with a single user message; the prompts take no
// arguments.
func staticPrompt(description, text string) func(context.Context, map[string]string) (*mcp.PromptResult, error) {
	return func(context.Context, map[string]string) (*mcp.PromptResult, error) {
		return &mcp.PromptResult{
			Description: description,
			Messages: []mcp.PromptMessage{{
				Role:    string(mcp.RoleUser),
				Content: mcp.TextContent{Type: "text", Text: text},
			}},
		}, nil
	}
}
