package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `galleon turns focus habits into a ship build. Earned points construct an ordered set of ship segments; rule violations damage the most recent work; clean weeks repair it.

Core concepts (keep this mental model small):
- Blueprint: the fixed, ordered list of costed segments (keel first, figurehead last).
- Segment progress: points applied toward one segment; full cost means completed.
- Ledger event: an append-only record of every point movement (allocation, attack, repair).
- Attack: punitive point removal triggered by a usage violation, truth mismatch, or streak break. At most one per user, day, and trigger.
- Repair: 50 points restored to the most damaged segment for each perfect day in the trailing week.
- Consecutive days: repeated violations escalate damage, looking back up to 30 days.

Rules of engagement:
1) Orient: call get_status for the current build.
2) Reward: call apply_points with a dedupe_key when the same earning event might be reported twice. Excess beyond the final segment is dropped, not banked.
3) Punish: record the fact first (record_usage_violation etc.), then call the matching apply_*_attack tool. Repeating an attack call for the same day is a safe no-op.
4) Restore: call apply_auto_repairs once a day; it evaluates the trailing seven days and is idempotent per day.
5) Audit: get_ledger_events and get_attack_log show the full history, newest first.

Transport notes:
- HTTP: authenticate with a Bearer API key; each key maps to one user.
- Stdio: local single-user mode, no auth.

Docs (progressive disclosure):
- galleon://docs/index (what to read when)
- galleon://docs/concepts (glossary + invariants)
- galleon://docs/workflows/daily-cycle
- galleon://docs/damage-model
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "galleon://docs/index",
		Name:        "docs_index",
		Title:       "galleon docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read when.",
		Content: `# galleon: Agent Docs Index

Keep your baseline context small and load deeper docs only when needed.

## Quick start (no deep docs)

1) ` + "`get_status`" + ` to see the build.
2) ` + "`apply_points`" + ` after the user earns points.
3) ` + "`apply_usage_violation_attack`" + ` / ` + "`apply_truth_mismatch_attack`" + ` / ` + "`apply_streak_break_attack`" + ` when a rule is broken.
4) ` + "`apply_auto_repairs`" + ` once per day.

## When to read more

- Unsure what a segment, attack, or repair is: read ` + "`galleon://docs/concepts`" + `.
- Driving the daily evaluation loop: read ` + "`galleon://docs/workflows/daily-cycle`" + `.
- Explaining a damage amount to the user: read ` + "`galleon://docs/damage-model`" + `.

## Known limitations

- One active ship per user; finishing a build does not start a new one automatically.
- Dropped excess points are reported in the result but never banked.
`,
	},
	{
		URI:         "galleon://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Glossary of build domain terms and the invariants the server enforces.",
		Content: `# Concepts

- **Blueprint**: ordered, costed segments. Fixed per ship; points always fill the lowest-order incomplete segment first.
- **Segment progress**: 0 ≤ points ≤ cost, always. Completion is reached exactly when points equal cost.
- **Ledger event**: append-only. Positive delta for allocations and repairs, negative for attacks. Events are never edited or deleted.
- **Dedupe key**: the idempotency handle. Attacks derive theirs from user, day, and trigger; repairs from user and day; allocations accept a caller-supplied key.
- **Attack target**: the most recently completed segment, else the in-progress one. Damage never exceeds the target's applied points, and completing work that gets damaged clears its completion.
- **Consecutive days**: how many days in a row (up to 30, counting backward from the trigger day) the same trigger fact exists. Escalates damage.
- **Severity**: ceil(damage / 200), clamped to 1..5.
- **Perfect day**: no violation, no mismatch, an unbroken under-limit streak day with zero violations, and (when verification is on) a matching truth check.

# Invariants

- Replaying any attack or repair for the same day changes nothing and reports ` + "`deduped: true`" + `.
- Every point movement appears in the ledger; ` + "`get_status`" + ` totals always reconcile with event history.
`,
	},
	{
		URI:         "galleon://docs/workflows/daily-cycle",
		Name:        "docs_workflow_daily_cycle",
		Title:       "Workflow: the daily cycle",
		Description: "Playbook for the once-a-day evaluation: facts, attacks, repairs.",
		Content: `# Workflow: the daily cycle

Run this once per day, after the day's usage data is final.

## 1) Record the facts

Always record facts before applying attacks; the consecutive-day lookback reads them.

- ` + "`record_streak_day`" + ` for every day, broken or not.
- ` + "`record_usage_violation`" + ` if the limit was exceeded.
- ` + "`record_truth_mismatch`" + ` and ` + "`record_truth_check`" + ` when verification is enabled.

## 2) Apply attacks

One call per triggered rule. Calls are idempotent per day, so re-running the cycle is safe.

## 3) Apply repairs

Call ` + "`apply_auto_repairs`" + ` with today's date. It scans the trailing seven days, grants 50 points per perfect day to the most damaged segment, and skips days already repaired.

## 4) Report

` + "`get_status`" + ` for the updated build; ` + "`get_attack_log`" + ` if the user asks what hit them.
`,
	},
	{
		URI:         "galleon://docs/damage-model",
		Name:        "docs_damage_model",
		Title:       "Damage model",
		Description: "How each trigger's damage is computed and capped.",
		Content: `# Damage model

All damage is floored to an integer, then capped at the target segment's applied points.

## Usage violation

` + "`overage × min(3, overage / limit) × (1 + 0.5 × consecutive_days)`" + `

Deeper overages scale damage up to 3× linearly with the overage-to-limit ratio.

## Truth mismatch

` + "`|reported − verified| × lie_multiplier × (1 + 0.75 × consecutive_days) × 2`" + `

The lie multiplier is 3 for gaps over 60 minutes, 2 over 30, otherwise 1. Lying is punished roughly twice as hard as overuse.

## Streak break

` + "`previous_streak_days × 50`" + `, capped at 1000. Consecutive-day escalation does not apply; losing a streak is a single event.

## Severity

` + "`ceil(damage / 200)`" + ` clamped to 1..5, recorded on the attack for reporting.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
