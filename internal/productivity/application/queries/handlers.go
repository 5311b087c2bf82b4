package queries

import sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"

var (
	_ sharedApplication.QueryHandler[ListTasksQuery, []TaskDTO]               = (*ListTasksHandler)(nil)
	_ sharedApplication.QueryHandler[GetTaskQuery, *TaskDTO]                  = (*GetTaskHandler)(nil)
	_ sharedApplication.QueryHandler[RankTasksQuery, *RankTasksResult]        = (*RankTasksHandler)(nil)
	_ sharedApplication.QueryHandler[ExplainTaskQuery, *RankedTaskDTO]        = (*ExplainTaskHandler)(nil)
	_ sharedApplication.QueryHandler[CompletedTasksQuery, []TaskDTO]          = (*CompletedTasksHandler)(nil)
	_ sharedApplication.QueryHandler[LeaderboardQuery, []LeaderboardEntryDTO] = (*LeaderboardHandler)(nil)
)
