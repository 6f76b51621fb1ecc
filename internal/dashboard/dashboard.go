// Package dashboard assembles the portal home page of a signed-in member.
package dashboard

import (
	"context"
	"html/template"

	"golang.org/x/sync/errgroup"

	"github.com/gouvernance-ai/gouvernance/internal/agents"
	"github.com/gouvernance-ai/gouvernance/internal/dashboard/svg"
	"github.com/gouvernance-ai/gouvernance/internal/diagnostics"
	"github.com/gouvernance-ai/gouvernance/internal/policies"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// AgentLister lists the agents of an organization.
type AgentLister interface {
	List(ctx context.Context, sc scope.Scope, filter agents.ListFilter) ([]agents.Agent, error)
}

// PolicyLister lists the policies of an organization.
type PolicyLister interface {
	List(ctx context.Context, sc scope.Scope, status policies.Status) ([]policies.Policy, error)
}

// DiagnosticReader reads the latest diagnostic of an organization.
type DiagnosticReader interface {
	Latest(ctx context.Context, sc scope.Scope) (diagnostics.Diagnostic, bool, error)
}

// Summary is the dashboard page model.
type Summary struct {
	HasOrganization  bool
	Agents           []agents.Agent
	AgentCount       int
	AverageRisk      float64
	ActivePolicies   int
	LatestDiagnostic *diagnostics.Diagnostic
	Gauge            template.HTML
}

// Loader fetches the dashboard data sources concurrently.
type Loader struct {
	Agents      AgentLister
	Policies    PolicyLister
	Diagnostics DiagnosticReader
}

// Load builds the summary for sc. Without an organization nothing is fetched.
func (l Loader) Load(ctx context.Context, sc scope.Scope) (Summary, error) {
	if !sc.HasOrganization() {
		return Summary{}, nil
	}
	var (
		agentList  []agents.Agent
		policyList []policies.Policy
		latest     diagnostics.Diagnostic
		hasLatest  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		agentList, err = l.Agents.List(gctx, sc, agents.ListFilter{})
		return err
	})
	g.Go(func() (err error) {
		policyList, err = l.Policies.List(gctx, sc, "")
		return err
	})
	g.Go(func() (err error) {
		latest, hasLatest, err = l.Diagnostics.Latest(gctx, sc)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	avg := agents.AverageRisk(agentList)
	summary := Summary{
		HasOrganization: true,
		Agents:          agentList,
		AgentCount:      len(agentList),
		AverageRisk:     avg,
		ActivePolicies:  policies.CountActive(policyList),
		Gauge: svg.Gauge(avg, svg.GaugeOptions{
			ID:    "risque-moyen",
			Title: "Score de risque moyen",
		}),
	}
	if hasLatest {
		summary.LatestDiagnostic = &latest
	}
	return summary, nil
}
