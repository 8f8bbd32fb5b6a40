package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
)

// TerminalTool runs shell commands with a bounded duration. Timeouts
// surface through the standard tool-error path.
type TerminalTool struct{}

func NewTerminalTool() *TerminalTool {
	return &TerminalTool{}
}

func (t *TerminalTool) Name() string {
	return "execute_command"
}

func (t *TerminalTool) Description() string {
	return "Execute a shell command and return its stdout and stderr"
}

func (t *TerminalTool) Parameters() []Parameter {
	return []Parameter{
		{
			Name:        "command",
			Type:        "string",
			Description: "The command to execute",
			Required:    true,
		},
		{
			Name:        "working_directory",
			Type:        "string",
			Description: "The directory to run the command in",
		},
	}
}

func (t *TerminalTool) Execute(ctx context.Context, args map[string]interface{}) (<-chan models.ToolOutput, error) {
	command, _ := args["command"].(string)
	if command == "" {
		return nil, fmt.Errorf("execute_command requires command")
	}

	workingDir, _ := args["working_directory"].(string)
	if workingDir == "" {
		workingDir = config.GetToolWorkspaceDir()
	}

	out := make(chan models.ToolOutput)
	go func() {
		defer close(out)

		cmdCtx, cancel := context.WithTimeout(ctx, config.GetCommandTimeout())
		defer cancel()

		log.Info().Str("command", command).Str("dir", workingDir).Msg("Executing command")

		cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
		cmd.Dir = workingDir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		emit := func(output models.ToolOutput) bool {
			select {
			case out <- output:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if stdout.Len() > 0 {
			if !emit(models.ToolOutput{
				Type:    "stdout",
				Content: stdout.String(),
				Metadata: map[string]interface{}{
					"command": command,
				},
			}) {
				return
			}
		}
		if stderr.Len() > 0 {
			if !emit(models.ToolOutput{
				Type:    "stderr",
				Content: stderr.String(),
				Metadata: map[string]interface{}{
					"command": command,
				},
			}) {
				return
			}
		}

		if cmdCtx.Err() == context.DeadlineExceeded {
			emit(models.ToolOutput{
				Type:    OutputError,
				Content: fmt.Sprintf("command timed out after %s", config.GetCommandTimeout()),
			})
			return
		}

		if err != nil {
			emit(models.ToolOutput{
				Type:    OutputError,
				Content: fmt.Sprintf("command failed: %v", err),
				Metadata: map[string]interface{}{
					"command": command,
				},
			})
			return
		}

		if stdout.Len() == 0 && stderr.Len() == 0 {
			emit(models.ToolOutput{
				Type:    "stdout",
				Content: "(no output)",
				Metadata: map[string]interface{}{
					"command": command,
				},
			})
		}
	}()

	return out, nil
}
