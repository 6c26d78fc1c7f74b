package router

import (
	"fmt"

	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"
)

// SubjectRouter picks the handler for a mailbox message by its subject.
// Handlers are tried in registration order.
type SubjectRouter struct {
	handlers []usecase.TemplateHandler
	logger   logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{logger: logger}
}

// Register adds a handler after the ones already registered
func (r *SubjectRouter) Register(handler usecase.TemplateHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered mailbox handler", "handler", fmt.Sprintf("%T", handler))
}

// GetHandler returns the first handler accepting subject, or nil
func (r *SubjectRouter) GetHandler(subject string) usecase.TemplateHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}

// Len returns the number of registered handlers
func (r *SubjectRouter) Len() int {
	return len(r.handlers)
}
