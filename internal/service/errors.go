package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidTransition is returned when a status change violates the state machine
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrKitCycle is returned when adding a kit component would create a cycle
	ErrKitCycle = errors.New("kit composition cycle detected")

	// ErrKitDepthExceeded is returned when kit nesting exceeds the resolution limit
	ErrKitDepthExceeded = errors.New("kit nesting too deep")

	// ErrTaskCycle is returned when moving a task under its own descendant
	ErrTaskCycle = errors.New("task hierarchy cycle detected")

	// ErrServiceInUse is returned when deleting a service referenced by line items or kits
	ErrServiceInUse = errors.New("service is referenced and cannot be deleted")

	// ErrNotTeamMember is returned when assigning a company that is not on the project team
	ErrNotTeamMember = errors.New("company is not a member of the project team")

	// ErrTeamMemberHasWork is returned when removing a team company that still holds assignments
	ErrTeamMemberHasWork = errors.New("team member still has task assignments")

	// ErrNotEditable is returned when mutating an entity locked by its status
	ErrNotEditable = errors.New("entity is not editable in its current status")
)
