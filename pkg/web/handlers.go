// Package web provides the REST surface: workflow management, execution
// inspection, and the inbound event ingest endpoint.
package web

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/convy/flow/pkg/eventbus"
	"github.com/convy/flow/pkg/events"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/registry"
)

type APIHandlers struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	publisher   eventbus.EventPublisher
	validator   *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		publisher:   publisher,
		validator:   validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		return badRequest(c, "organization_id query parameter is required")
	}

	workflows, err := h.persistence.Workflows().ActiveByOrganization(c.Context(), organizationID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.persistence.Workflows().ByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var workflow models.Workflow

	if err := c.Bind().Body(&workflow); err != nil {
		return badRequest(c, "invalid workflow payload: "+err.Error())
	}

	if workflow.ID == "" {
		workflow.ID = uuid.NewString()
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := h.validator.Struct(&workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := workflow.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateNodeConfigs(c, &workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.Workflows().Save(c.Context(), &workflow); err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	existing, err := h.persistence.Workflows().ByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	var workflow models.Workflow

	if err := c.Bind().Body(&workflow); err != nil {
		return badRequest(c, "invalid workflow payload: "+err.Error())
	}

	workflow.ID = existing.ID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	if workflow.Status == "" {
		workflow.Status = existing.Status
	}

	if err := h.validator.Struct(&workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := workflow.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validateNodeConfigs(c, &workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.Workflows().Save(c.Context(), &workflow); err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.persistence.Workflows().Delete(c.Context(), c.Params("id")); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.persistence.Executions().ByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(execution)
}

// GetNodeTypes exposes the registered node types and their config schemas,
// consumed by the workflow editor.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := make([]fiber.Map, 0)

	for _, nodeType := range h.registry.Types() {
		factory, ok := h.registry.Factory(nodeType)
		if !ok {
			continue
		}

		types = append(types, fiber.Map{
			"id":          factory.ID(),
			"name":        factory.Name(),
			"description": factory.Description(),
			"schema":      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"node_types": types})
}

// IngestEvent accepts an inbound conversation event and publishes it to the
// bus; workers consume it asynchronously.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var inbound events.InboundMessage

	if err := c.Bind().Body(&inbound); err != nil {
		return badRequest(c, "invalid event payload: "+err.Error())
	}

	if inbound.ID == "" {
		inbound.ID = uuid.NewString()
	}

	if inbound.ReceivedAt.IsZero() {
		inbound.ReceivedAt = time.Now().UTC()
	}

	if err := inbound.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.publisher.PublishInbound(c.Context(), &inbound); err != nil {
		return internalError(c, err)
	}

	h.logger.Info("Ingested inbound event",
		"event_id", inbound.ID, "kind", inbound.Kind, "conversation_id", inbound.ConversationID)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": inbound.ID})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// validateNodeConfigs runs every node config through its factory's schema so
// bad workflows are refused at save time, not at execution time.
func (h *APIHandlers) validateNodeConfigs(c fiber.Ctx, workflow *models.Workflow) error {
	for _, node := range workflow.Nodes {
		if _, err := h.registry.Create(c.Context(), node.Type, node.ID, node.Config); err != nil {
			return err
		}
	}

	return nil
}
