package domain

import "context"

// HookEvent represents a lifecycle event type.
type HookEvent string

const (
	// PreSave runs before an entity is persisted (create or update).
	PreSave HookEvent = "pre_save"

	// PostSave runs after an entity is persisted, inside the same
	// transaction. A failing post-save hook rolls the save back.
	PostSave HookEvent = "post_save"

	// PreDelete runs before an entity is deleted.
	PreDelete HookEvent = "pre_delete"

	// PostDelete runs after an entity is deleted, inside the same transaction.
	PostDelete HookEvent = "post_delete"
)

// Hook is a function that runs at a specific lifecycle point.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
// Hooks run in registration order; the first error aborts the chain.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnPreSave registers a hook to run before save.
func (r *HookRegistry[T]) OnPreSave(hook Hook[T]) {
	r.On(PreSave, hook)
}

// OnPostSave registers a hook to run after save.
func (r *HookRegistry[T]) OnPostSave(hook Hook[T]) {
	r.On(PostSave, hook)
}

// OnPreDelete registers a hook to run before delete.
func (r *HookRegistry[T]) OnPreDelete(hook Hook[T]) {
	r.On(PreDelete, hook)
}

// OnPostDelete registers a hook to run after delete.
func (r *HookRegistry[T]) OnPostDelete(hook Hook[T]) {
	r.On(PostDelete, hook)
}
