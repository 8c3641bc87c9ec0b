package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/domain/repair"
)

// ApplyPointsParams are the arguments for apply_points.
type ApplyPointsParams struct {
	Points     int    `json:"points" jsonschema:"Points earned; non-positive amounts are a no-op"`
	SourceType string `json:"source_type,omitempty" jsonschema:"Origin of the points, e.g. focus_session"`
	SourceID   string `json:"source_id,omitempty" jsonschema:"Identifier of the originating record"`
	DedupeKey  string `json:"dedupe_key,omitempty" jsonschema:"Idempotency key; a repeated key is a no-op"`
}

// GetStatusParams are the arguments for get_status.
type GetStatusParams struct{}

// EventsParams are the arguments for get_ledger_events.
type EventsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of events, newest first (default 50)"`
}

// EventsResult lists ledger events.
type EventsResult struct {
	Events []ledger.Event `json:"events"`
}

// UsageViolationParams carry a daily usage overage.
type UsageViolationParams struct {
	Day           string `json:"day" jsonschema:"Day in YYYY-MM-DD"`
	OverageMin    int    `json:"overage_min" jsonschema:"Minutes over the daily limit"`
	DailyLimitMin int    `json:"daily_limit_min" jsonschema:"The daily limit in minutes"`
}

// TruthMismatchParams carry a reported-vs-verified discrepancy.
type TruthMismatchParams struct {
	Day         string `json:"day" jsonschema:"Day in YYYY-MM-DD"`
	ReportedMin int    `json:"reported_min" jsonschema:"Minutes the user reported"`
	VerifiedMin int    `json:"verified_min" jsonschema:"Minutes independently verified"`
}

// StreakBreakParams carry a broken streak.
type StreakBreakParams struct {
	Day                string `json:"day" jsonschema:"Day the streak broke, YYYY-MM-DD"`
	PreviousStreakDays int    `json:"previous_streak_days" jsonschema:"Length of the streak that was lost"`
}

// AttackLogParams are the arguments for get_attack_log.
type AttackLogParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of attacks, newest first (default 50)"`
}

// AttackLogResult lists applied attacks.
type AttackLogResult struct {
	Attacks []attack.Record `json:"attacks"`
}

// AutoRepairParams are the arguments for apply_auto_repairs.
type AutoRepairParams struct {
	Day string `json:"day" jsonschema:"Evaluation day in YYYY-MM-DD; the trailing week ends here"`
}

// AutoRepairResult lists per-day repair outcomes.
type AutoRepairResult struct {
	Repairs []repair.Result `json:"repairs"`
}

// StreakDayParams record one day of streak history.
type StreakDayParams struct {
	Day            string `json:"day" jsonschema:"Day in YYYY-MM-DD"`
	Broken         bool   `json:"broken,omitempty" jsonschema:"Whether the streak broke on this day"`
	UnderLimit     bool   `json:"under_limit,omitempty" jsonschema:"Whether usage stayed under the daily limit"`
	ViolationCount int    `json:"violation_count,omitempty" jsonschema:"Number of violations recorded for the day"`
}

// TruthCheckParams record a daily truth-check outcome.
type TruthCheckParams struct {
	Day    string `json:"day" jsonschema:"Day in YYYY-MM-DD"`
	Status string `json:"status" jsonschema:"One of match, mismatch, pending"`
}

// SetVerificationParams toggle truth verification for the user.
type SetVerificationParams struct {
	Enabled bool `json:"enabled" jsonschema:"Whether verified-usage truth checks are active"`
}

// Ack is the result of fact-recording tools.
type Ack struct {
	OK bool `json:"ok"`
}

// registerTools wires every tool onto the server. Handlers read the
// user from context; the auth middleware put it there.
func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_points",
		Description: "Allocate earned points across ship segments in build order",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ApplyPointsParams) (*sdkmcp.CallToolResult, *ledger.AllocationResult, error) {
		res, err := svc.Ledger.ApplyPoints(ctx, getUserID(ctx), ledger.ApplyPointsRequest{
			Points:     params.Points,
			SourceType: params.SourceType,
			SourceID:   params.SourceID,
			DedupeKey:  params.DedupeKey,
		})
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_status",
		Description: "Get the current ship build: per-segment progress, completion percentage, and the segment under construction",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params GetStatusParams) (*sdkmcp.CallToolResult, *ledger.Status, error) {
		status, err := svc.Ledger.Status(ctx, getUserID(ctx))
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, status, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_ledger_events",
		Description: "List ledger events (allocations, attacks, repairs), newest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params EventsParams) (*sdkmcp.CallToolResult, *EventsResult, error) {
		events, err := svc.Ledger.Events(ctx, getUserID(ctx), params.Limit)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &EventsResult{Events: events}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_usage_violation_attack",
		Description: "Apply damage for a daily usage limit violation; idempotent per user, day, and trigger",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params UsageViolationParams) (*sdkmcp.CallToolResult, *attack.Result, error) {
		res, err := svc.Attacks.ApplyUsageViolation(ctx, getUserID(ctx), params.Day, params.OverageMin, params.DailyLimitMin)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_truth_mismatch_attack",
		Description: "Apply damage for a reported-vs-verified usage discrepancy; idempotent per user, day, and trigger",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params TruthMismatchParams) (*sdkmcp.CallToolResult, *attack.Result, error) {
		res, err := svc.Attacks.ApplyTruthMismatch(ctx, getUserID(ctx), params.Day, params.ReportedMin, params.VerifiedMin)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_streak_break_attack",
		Description: "Apply damage for a broken streak; idempotent per user, day, and trigger",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params StreakBreakParams) (*sdkmcp.CallToolResult, *attack.Result, error) {
		res, err := svc.Attacks.ApplyStreakBreak(ctx, getUserID(ctx), params.Day, params.PreviousStreakDays)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_attack_log",
		Description: "List applied attacks with severity and consecutive-day counts, newest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params AttackLogParams) (*sdkmcp.CallToolResult, *AttackLogResult, error) {
		attacks, err := svc.Attacks.Log(ctx, getUserID(ctx), params.Limit)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &AttackLogResult{Attacks: attacks}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_auto_repairs",
		Description: "Grant repair points for perfect days in the trailing week; idempotent per day",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params AutoRepairParams) (*sdkmcp.CallToolResult, *AutoRepairResult, error) {
		repairs, err := svc.Repairs.AutoRepair(ctx, getUserID(ctx), params.Day)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &AutoRepairResult{Repairs: repairs}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_usage_violation",
		Description: "Record that the daily usage limit was exceeded on a day",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params UsageViolationParams) (*sdkmcp.CallToolResult, *Ack, error) {
		err := svc.Facts.RecordUsageViolation(ctx, &facts.UsageViolation{
			UserID:        getUserID(ctx),
			Day:           params.Day,
			OverageMin:    params.OverageMin,
			DailyLimitMin: params.DailyLimitMin,
		})
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &Ack{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_truth_mismatch",
		Description: "Record a discrepancy between reported and verified usage for a day",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params TruthMismatchParams) (*sdkmcp.CallToolResult, *Ack, error) {
		err := svc.Facts.RecordTruthMismatch(ctx, &facts.TruthMismatch{
			UserID:      getUserID(ctx),
			Day:         params.Day,
			ReportedMin: params.ReportedMin,
			VerifiedMin: params.VerifiedMin,
		})
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &Ack{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_streak_day",
		Description: "Record one day of streak history",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params StreakDayParams) (*sdkmcp.CallToolResult, *Ack, error) {
		err := svc.Facts.RecordStreakDay(ctx, &facts.StreakDay{
			UserID:         getUserID(ctx),
			Day:            params.Day,
			Broken:         params.Broken,
			UnderLimit:     params.UnderLimit,
			ViolationCount: params.ViolationCount,
		})
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &Ack{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_truth_check",
		Description: "Record the daily verified-usage truth check outcome",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params TruthCheckParams) (*sdkmcp.CallToolResult, *Ack, error) {
		err := svc.Facts.RecordTruthCheck(ctx, &facts.TruthCheck{
			UserID: getUserID(ctx),
			Day:    params.Day,
			Status: facts.CheckStatus(params.Status),
		})
		if err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &Ack{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_verification",
		Description: "Enable or disable verified-usage truth checks for the user",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SetVerificationParams) (*sdkmcp.CallToolResult, *Ack, error) {
		if err := svc.Facts.SetVerification(ctx, getUserID(ctx), params.Enabled); err != nil {
			return nil, nil, mapError(err)
		}
		return nil, &Ack{OK: true}, nil
	})
}
