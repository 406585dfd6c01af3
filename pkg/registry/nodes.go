package registry

import (
	"net/http"

	"github.com/convy/flow/pkg/nodes/abtest"
	"github.com/convy/flow/pkg/nodes/aiagent"
	"github.com/convy/flow/pkg/nodes/billing"
	"github.com/convy/flow/pkg/nodes/buttons"
	"github.com/convy/flow/pkg/nodes/condition"
	"github.com/convy/flow/pkg/nodes/crm"
	"github.com/convy/flow/pkg/nodes/delay"
	"github.com/convy/flow/pkg/nodes/httpcall"
	"github.com/convy/flow/pkg/nodes/httpsend"
	"github.com/convy/flow/pkg/nodes/notification"
	"github.com/convy/flow/pkg/nodes/sendmessage"
	"github.com/convy/flow/pkg/nodes/trigger"
	"github.com/convy/flow/pkg/nodes/waitinput"
	"github.com/convy/flow/pkg/protocol"
)

// Dependencies bundles the external collaborators node factories need.
type Dependencies struct {
	Messenger  protocol.Messenger
	AI         protocol.AIClient
	CRM        protocol.CRMService
	Billing    protocol.BillingService
	Notifier   protocol.Notifier
	HTTPClient *http.Client
}

// RegisterDefaults installs the built-in node set.
func RegisterDefaults(r *Registry, deps Dependencies) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}

	r.Register(trigger.NewFactory())
	r.Register(condition.NewFactory())
	r.Register(abtest.NewFactory())
	r.Register(delay.NewFactory())
	r.Register(waitinput.NewFactory())
	r.Register(httpcall.NewFactory(deps.HTTPClient))
	r.Register(httpsend.NewEmailFactory(deps.HTTPClient))
	r.Register(httpsend.NewSMSFactory(deps.HTTPClient))
	r.Register(sendmessage.NewFactory(deps.Messenger))
	r.Register(buttons.NewFactory(deps.Messenger))
	r.Register(aiagent.NewFactory(deps.AI))
	r.Register(crm.NewFactory(deps.CRM))
	r.Register(crm.NewTagFactory(deps.CRM))
	r.Register(crm.NewStageFactory(deps.CRM))
	r.Register(billing.NewFactory(deps.Billing))
	r.Register(notification.NewFactory(deps.Notifier))
}
