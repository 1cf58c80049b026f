package mcpserver

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// LoggingTool returns a tool middleware for structured logging.
func LoggingTool(log *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)

			outcome := "ok"
			switch {
			case err != nil:
				outcome = "error"
			case res != nil && res.IsError:
				outcome = "tool_error"
			}

			// metadata only, arguments may carry medication names
			log.Info("mcp",
				zap.String("tool", req.Params.Name),
				zap.String("outcome", outcome),
				zap.Duration("dur", time.Since(start)),
			)
			return res, err
		}
	}
}

// RecoverTool returns a tool middleware that turns panics into tool errors.
func RecoverTool(log *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic",
						zap.Any("reason", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("tool", req.Params.Name),
					)
					res, err = mcp.NewToolResultError("internal error"), nil
				}
			}()
			return next(ctx, req)
		}
	}
}
