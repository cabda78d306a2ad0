package service

import (
	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

func names[A ~string](actions []A) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func changeRequestView(cr models.ChangeRequest) *dto.ChangeRequestView {
	return &dto.ChangeRequestView{
		ChangeRequest: cr,
		Actions:       names(workflow.ChangeRequestActions(cr)),
		Editable:      workflow.Editable(cr),
	}
}

func taskView(t models.Task) *dto.TaskView {
	return &dto.TaskView{
		Task:       t,
		Actions:    names(workflow.TaskActions(t)),
		Operations: names(workflow.TaskOperations(t)),
	}
}

func projectRequestView(pr models.ProjectRequest) *dto.ProjectRequestView {
	return &dto.ProjectRequestView{
		ProjectRequest: pr,
		Actions:        names(workflow.ProjectRequestFlow.Actions(pr.Status)),
	}
}

func projectView(p models.Project, progress *models.Progress) *dto.ProjectView {
	return &dto.ProjectView{
		Project:  p,
		Progress: progress,
		Actions:  names(workflow.ProjectFlow.Actions(p.Status)),
	}
}
