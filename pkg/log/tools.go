package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

// ToolCallMiddleware logs the start and outcome of every tool call under a
// fresh call id. Argument values are not logged; they may hold file contents.
func ToolCallMiddleware(logger *log.Logger) func(string, server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(toolName string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			entry := logger.WithFields(log.Fields{
				"tool":   toolName,
				"callID": uuid.NewString(),
			})
			entry.Debug("tool call started")

			start := time.Now()
			result, err := next(ctx, request)
			entry = entry.WithField("durationMs", time.Since(start).Milliseconds())

			switch {
			case err != nil:
				entry.WithError(err).Error("tool call failed")
			case result != nil && result.IsError:
				entry.Warn("tool call returned an error result")
			default:
				entry.Info("tool call finished")
			}
			return result, err
		}
	}
}
