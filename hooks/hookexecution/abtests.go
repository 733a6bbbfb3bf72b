package hookexecution

import (
	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookanalytics"
)

// abTestActivityName labels the analytics activity reporting which variant an
// AB test drew for the request.
const abTestActivityName = "hook-abtests"

// abTestTagger annotates stage outcomes with the variant selections drawn by
// the request's AB-test selector, so analytics adapters can attribute the
// outcome to a variant. Each test is reported once per request, on the first
// invocation result of its chosen variant.
type abTestTagger struct {
	selector *hooks.ABTestSelector
	tagged   map[hooks.HookID]struct{}
}

func newABTestTagger() *abTestTagger {
	return &abTestTagger{tagged: make(map[hooks.HookID]struct{})}
}

// writeOutcome attaches a selection activity to the invocation results of the
// drawn variants. Callers hold the executor lock.
func (t *abTestTagger) writeOutcome(outcome *StageOutcome) {
	if t.selector == nil {
		return
	}

	selections := t.selector.Selections()
	if len(selections) == 0 {
		return
	}

	for gi := range outcome.Groups {
		results := outcome.Groups[gi].InvocationResults
		for ri := range results {
			for control, chosen := range selections {
				if _, done := t.tagged[control]; done || results[ri].HookID != chosen {
					continue
				}
				results[ri].AnalyticsTags.Append(abTestAnalytics(control, chosen))
				t.tagged[control] = struct{}{}
			}
		}
	}
}

func abTestAnalytics(control, chosen hooks.HookID) hookanalytics.Analytics {
	return hookanalytics.Analytics{
		Activities: []hookanalytics.Activity{{
			Name:   abTestActivityName,
			Status: hookanalytics.ActivityStatusSuccess,
			Results: []hookanalytics.Result{{
				Status: hookanalytics.ResultStatusRun,
				Values: map[string]interface{}{
					"module":        control.ModuleCode,
					"hook":          control.HookImplCode,
					"chosen_module": chosen.ModuleCode,
					"chosen_hook":   chosen.HookImplCode,
				},
			}},
		}},
	}
}
