package crm

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	service protocol.CRMService
}

func NewFactory(service protocol.CRMService) protocol.NodeFactory {
	return &Factory{service: service}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewCRMNode(id, config, f.service)
}

func (f *Factory) ID() string {
	return models.NodeTypeCRM
}

func (f *Factory) Name() string {
	return "CRM"
}

func (f *Factory) Description() string {
	return "Creates leads or updates lead status in the CRM"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{ActionCreateLead, ActionUpdateStatus},
			},
			"status": map[string]any{
				"type":        "string",
				"description": "Target status; required for update_status",
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Lead fields for create_lead; values support {{path}} templating",
			},
		},
		"required": []string{"action"},
	}
}

type TagFactory struct {
	service protocol.CRMService
}

func NewTagFactory(service protocol.CRMService) protocol.NodeFactory {
	return &TagFactory{service: service}
}

func (f *TagFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewTagNode(id, config, f.service)
}

func (f *TagFactory) ID() string {
	return models.NodeTypeTag
}

func (f *TagFactory) Name() string {
	return "Tag"
}

func (f *TagFactory) Description() string {
	return "Adds or removes a tag on the conversation's lead"
}

func (f *TagFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tag": map[string]any{"type": "string"},
			"action": map[string]any{
				"type":    "string",
				"enum":    []string{TagActionAdd, TagActionRemove},
				"default": TagActionAdd,
			},
		},
		"required": []string{"tag"},
	}
}

type StageFactory struct {
	service protocol.CRMService
}

func NewStageFactory(service protocol.CRMService) protocol.NodeFactory {
	return &StageFactory{service: service}
}

func (f *StageFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewStageNode(id, config, f.service)
}

func (f *StageFactory) ID() string {
	return models.NodeTypeStage
}

func (f *StageFactory) Name() string {
	return "Stage"
}

func (f *StageFactory) Description() string {
	return "Moves the conversation's lead to a pipeline stage"
}

func (f *StageFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"stage": map[string]any{"type": "string"},
		},
		"required": []string{"stage"},
	}
}
