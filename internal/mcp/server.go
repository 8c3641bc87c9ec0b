package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/domain/repair"
)

// LedgerService defines ledger operations needed by MCP.
type LedgerService interface {
	ApplyPoints(ctx context.Context, userID string, req ledger.ApplyPointsRequest) (*ledger.AllocationResult, error)
	Status(ctx context.Context, userID string) (*ledger.Status, error)
	Events(ctx context.Context, userID string, limit int) ([]ledger.Event, error)
}

// AttackService defines attack operations needed by MCP.
type AttackService interface {
	ApplyUsageViolation(ctx context.Context, userID, day string, overageMin, dailyLimitMin int) (*attack.Result, error)
	ApplyTruthMismatch(ctx context.Context, userID, day string, reportedMin, verifiedMin int) (*attack.Result, error)
	ApplyStreakBreak(ctx context.Context, userID, day string, previousStreakDays int) (*attack.Result, error)
	Log(ctx context.Context, userID string, limit int) ([]attack.Record, error)
}

// RepairService defines repair operations needed by MCP.
type RepairService interface {
	AutoRepair(ctx context.Context, userID, day string) ([]repair.Result, error)
}

// FactsService defines the fact-ingestion operations needed by MCP.
type FactsService interface {
	RecordUsageViolation(ctx context.Context, v *facts.UsageViolation) error
	RecordTruthMismatch(ctx context.Context, m *facts.TruthMismatch) error
	RecordStreakDay(ctx context.Context, d *facts.StreakDay) error
	RecordTruthCheck(ctx context.Context, c *facts.TruthCheck) error
	SetVerification(ctx context.Context, userID string, enabled bool) error
}

// Services contains all domain services needed by MCP.
type Services struct {
	Ledger  LedgerService
	Attacks AttackService
	Repairs RepairService
	Facts   FactsService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      UserResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "galleon",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode is local-only: always map to the default user.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultUserID))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
