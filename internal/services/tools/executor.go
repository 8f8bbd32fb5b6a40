package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
)

// ToolExecutor resolves and runs one tool call end-to-end, collecting
// the output sequence into a single result string
type ToolExecutor struct {
	registry *Service
}

func NewToolExecutor(registry *Service) *ToolExecutor {
	return &ToolExecutor{registry: registry}
}

// ExecuteToolCall parses the serialized arguments, runs the tool, and
// concatenates its outputs. An error-tagged output fails the call with
// a ToolExecutionError.
func (e *ToolExecutor) ExecuteToolCall(ctx context.Context, call models.ToolCall) (string, error) {
	log.Info().Str("tool", call.Name).Str("call_id", call.ID).Msg("Executing tool call")

	tool, exists := e.registry.Get(call.Name)
	if !exists {
		return "", fmt.Errorf("%w: %s", domain.ErrToolNotFound, call.Name)
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", fmt.Errorf("invalid tool arguments: %w", err)
	}
	if err := ValidateArgs(tool, args); err != nil {
		return "", fmt.Errorf("invalid tool arguments: %w", err)
	}

	outputs, err := tool.Execute(ctx, args)
	if err != nil {
		return "", &domain.ToolExecutionError{Tool: call.Name, Err: err}
	}

	var result strings.Builder
	var failed error
	for output := range outputs {
		result.WriteString(output.Content)
		result.WriteString("\n")
		if output.Type == OutputError {
			failed = &domain.ToolExecutionError{Tool: call.Name, Err: fmt.Errorf("%s", output.Content)}
		}
	}

	if failed != nil {
		return result.String(), failed
	}
	return result.String(), nil
}
