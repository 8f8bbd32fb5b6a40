package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/domain/chat/models"
)

// GitTool runs git operations by shelling out to the git binary
type GitTool struct{}

func NewGitTool() *GitTool {
	return &GitTool{}
}

func (t *GitTool) Name() string {
	return "git"
}

func (t *GitTool) Description() string {
	return "Perform git operations: init, clone, add, commit, status, log, branch"
}

func (t *GitTool) Parameters() []Parameter {
	return []Parameter{
		{
			Name:        "operation",
			Type:        "string",
			Description: "The git operation to perform",
			Required:    true,
			Enum:        []string{"init", "clone", "add", "commit", "status", "log", "branch"},
		},
		{
			Name:        "path",
			Type:        "string",
			Description: "The repository path",
			Required:    true,
		},
		{
			Name:        "url",
			Type:        "string",
			Description: "The remote URL, for clone",
		},
		{
			Name:        "files",
			Type:        "string",
			Description: "Pathspec of files to stage, for add",
		},
		{
			Name:        "message",
			Type:        "string",
			Description: "The commit message, for commit",
		},
		{
			Name:        "branch",
			Type:        "string",
			Description: "The branch name, for branch",
		},
	}
}

func (t *GitTool) Execute(ctx context.Context, args map[string]interface{}) (<-chan models.ToolOutput, error) {
	operation, _ := args["operation"].(string)
	path, _ := args["path"].(string)
	if operation == "" || path == "" {
		return nil, fmt.Errorf("git requires operation and path")
	}

	gitArgs, err := t.buildArgs(operation, path, args)
	if err != nil {
		return nil, err
	}

	out := make(chan models.ToolOutput, 1)
	go func() {
		defer close(out)

		cmdCtx, cancel := context.WithTimeout(ctx, config.GetCommandTimeout())
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, "git", gitArgs...)
		if operation != "clone" && operation != "init" {
			cmd.Dir = path
		}

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		var result models.ToolOutput
		if err := cmd.Run(); err != nil {
			result = models.ToolOutput{
				Type:    OutputError,
				Content: fmt.Sprintf("git %s failed: %v\n%s", operation, err, stderr.String()),
			}
		} else {
			content := strings.TrimSpace(stdout.String())
			if content == "" {
				content = fmt.Sprintf("git %s completed", operation)
			}
			result = models.ToolOutput{
				Type:    "git_output",
				Content: content,
				Metadata: map[string]interface{}{
					"operation": operation,
					"path":      path,
				},
			}
		}

		select {
		case out <- result:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

func (t *GitTool) buildArgs(operation, path string, args map[string]interface{}) ([]string, error) {
	switch strings.ToLower(operation) {
	case "init":
		return []string{"init", path}, nil
	case "clone":
		url, _ := args["url"].(string)
		if url == "" {
			return nil, fmt.Errorf("git clone requires url")
		}
		return []string{"clone", url, path}, nil
	case "add":
		files, _ := args["files"].(string)
		if files == "" {
			files = "."
		}
		return []string{"add", files}, nil
	case "commit":
		message, _ := args["message"].(string)
		if message == "" {
			return nil, fmt.Errorf("git commit requires message")
		}
		return []string{"commit", "-m", message}, nil
	case "status":
		return []string{"status", "--short"}, nil
	case "log":
		return []string{"log", "--oneline", "-20"}, nil
	case "branch":
		branch, _ := args["branch"].(string)
		if branch == "" {
			return []string{"branch", "--list"}, nil
		}
		return []string{"branch", branch}, nil
	default:
		return nil, fmt.Errorf("unsupported git operation: %s", operation)
	}
}
