package queries

import (
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	Priority        string     `json:"priority"`
	Intervals       []int      `json:"intervals,omitempty"`
	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	RescheduleCount int        `json:"reschedule_count"`
	Subtasks        int        `json:"subtasks"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	NextReminderAt  *time.Time `json:"next_reminder_at,omitempty"`
	TimerActive     bool       `json:"timer_active"`
}

// RankedTaskDTO is a task with its place in the ranking.
type RankedTaskDTO struct {
	TaskDTO
	Rank        int                `json:"rank"`
	Score       float64            `json:"score"`
	Breakdown   map[string]float64 `json:"breakdown"`
	Explanation string             `json:"explanation"`
}

// ToTaskDTO maps a task to its DTO.
func ToTaskDTO(t *task.Task) TaskDTO {
	dto := TaskDTO{
		ID:              t.ID(),
		Text:            t.Text(),
		Priority:        t.Priority().String(),
		ScheduledFor:    t.ScheduledFor(),
		CreatedAt:       t.CreatedAt(),
		RescheduleCount: t.RescheduleCount(),
		Subtasks:        t.SubtaskCount(),
		Completed:       t.IsCompleted(),
		CompletedAt:     t.CompletedAt(),
		TimerActive:     t.TimerActive(),
	}
	for _, iv := range t.Intervals() {
		dto.Intervals = append(dto.Intervals, iv.Minutes())
	}
	if r := t.Reminder(); r != nil && !r.NextReminderAt.IsZero() {
		next := r.NextReminderAt
		dto.NextReminderAt = &next
	}
	return dto
}

func toTaskDTOs(tasks []*task.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}

func toRankedDTO(r services.RankedTask) RankedTaskDTO {
	score := services.Score{Value: r.Score, Breakdown: r.Breakdown}
	return RankedTaskDTO{
		TaskDTO:     ToTaskDTO(r.Task),
		Rank:        r.Rank,
		Score:       r.Score,
		Breakdown:   r.Breakdown,
		Explanation: score.String(),
	}
}
