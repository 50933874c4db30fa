package httpadapter

import (
	"kanvas/contexts/collaboration/task-service/application/queries"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	httptransport "kanvas/contexts/collaboration/task-service/transport/http"
)

func toColumnResponse(column entities.Column) httptransport.ColumnResponse {
	return httptransport.ColumnResponse{
		ID:         column.ID,
		BoardID:    column.BoardID,
		Name:       column.Name,
		OrderIndex: column.OrderIndex,
	}
}

func toTaskResponse(task entities.Task, expired bool) httptransport.TaskResponse {
	return httptransport.TaskResponse{
		ID:          task.ID,
		BoardID:     task.BoardID,
		ColumnID:    task.ColumnID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Expired:     expired,
		OrderIndex:  task.OrderIndex,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignees:   []httptransport.AssigneeResponse{},
	}
}

func toTaskView(view queries.TaskView) httptransport.TaskResponse {
	response := toTaskResponse(view.Task, view.Expired)
	for _, item := range view.Assignees {
		response.Assignees = append(response.Assignees, httptransport.AssigneeResponse{
			ID:            item.Assignee.ID,
			BoardMemberID: item.Assignee.BoardMemberID,
			UserID:        item.Assignee.UserID,
			Username:      item.User.Username,
			Firstname:     item.User.Firstname,
			Lastname:      item.User.Lastname,
			AvatarColor:   item.User.AvatarColor,
			AssignedAt:    item.Assignee.AssignedAt,
		})
	}
	return response
}
