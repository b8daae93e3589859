// Package policy decides whether a principal may act on a task or comment.
//
// Every rule is an ownership check. There are no roles and no overrides:
// the creator edits and deletes a task, the executor moves its status,
// and the owner edits and deletes a comment.
package policy

import "github.com/yukikurage/task-service/internal/models"

// CanModifyTask reports whether p created the task.
func CanModifyTask(p models.Principal, task *models.Task) bool {
	return p.ID == task.CreatorID
}

// CanChangeTaskStatus reports whether p is the task's executor.
func CanChangeTaskStatus(p models.Principal, task *models.Task) bool {
	return p.ID == task.ExecutorID
}

// CanDeleteTask reports whether p created the task.
func CanDeleteTask(p models.Principal, task *models.Task) bool {
	return p.ID == task.CreatorID
}

// CanModifyComment reports whether p owns the comment.
func CanModifyComment(p models.Principal, comment *models.Comment) bool {
	return p.ID == comment.OwnerID
}

// CanDeleteComment reports whether p owns the comment.
func CanDeleteComment(p models.Principal, comment *models.Comment) bool {
	return p.ID == comment.OwnerID
}
