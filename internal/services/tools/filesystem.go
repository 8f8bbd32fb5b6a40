package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/forgeline/devagent/internal/domain/chat/models"
)

// FileSystemTool performs file operations in the configured workspace
type FileSystemTool struct{}

func NewFileSystemTool() *FileSystemTool {
	return &FileSystemTool{}
}

func (t *FileSystemTool) Name() string {
	return "file_system"
}

func (t *FileSystemTool) Description() string {
	return "Perform file system operations: read, write, append, list directory contents, and delete files"
}

func (t *FileSystemTool) Parameters() []Parameter {
	return []Parameter{
		{
			Name:        "operation",
			Type:        "string",
			Description: "The operation to perform",
			Required:    true,
			Enum:        []string{"read", "write", "append", "list", "delete"},
		},
		{
			Name:        "path",
			Type:        "string",
			Description: "The file or directory path",
			Required:    true,
		},
		{
			Name:        "content",
			Type:        "string",
			Description: "The content to write or append",
		},
		{
			Name:        "pattern",
			Type:        "string",
			Description: "Optional glob pattern to filter directory listings, e.g. **/*.go",
		},
	}
}

func (t *FileSystemTool) Execute(ctx context.Context, args map[string]interface{}) (<-chan models.ToolOutput, error) {
	operation, _ := args["operation"].(string)
	path, _ := args["path"].(string)
	if operation == "" || path == "" {
		return nil, fmt.Errorf("file_system requires operation and path")
	}

	out := make(chan models.ToolOutput, 1)
	go func() {
		defer close(out)

		var result models.ToolOutput
		switch strings.ToLower(operation) {
		case "read":
			result = t.readFile(path)
		case "write":
			content, _ := args["content"].(string)
			result = t.writeFile(path, content, false)
		case "append":
			content, _ := args["content"].(string)
			result = t.writeFile(path, content, true)
		case "list":
			pattern, _ := args["pattern"].(string)
			result = t.listDirectory(path, pattern)
		case "delete":
			result = t.deleteFile(path)
		default:
			result = models.ToolOutput{
				Type:    OutputError,
				Content: fmt.Sprintf("unsupported operation: %s", operation),
			}
		}

		select {
		case out <- result:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

func (t *FileSystemTool) readFile(path string) models.ToolOutput {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ToolOutput{Type: OutputError, Content: fmt.Sprintf("error reading file: %v", err)}
	}
	return models.ToolOutput{
		Type:    "file_content",
		Content: string(data),
		Metadata: map[string]interface{}{
			"path": path,
			"size": len(data),
		},
	}
}

func (t *FileSystemTool) writeFile(path, content string, appendMode bool) models.ToolOutput {
	var err error
	if appendMode {
		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			_, err = f.WriteString(content)
			f.Close()
		}
	} else {
		err = os.WriteFile(path, []byte(content), 0o644)
	}

	if err != nil {
		return models.ToolOutput{Type: OutputError, Content: fmt.Sprintf("error writing file: %v", err)}
	}

	verb := "written"
	if appendMode {
		verb = "appended"
	}
	return models.ToolOutput{
		Type:    "file_written",
		Content: fmt.Sprintf("%d bytes %s to %s", len(content), verb, path),
		Metadata: map[string]interface{}{
			"path": path,
		},
	}
}

func (t *FileSystemTool) listDirectory(path, pattern string) models.ToolOutput {
	entries, err := os.ReadDir(path)
	if err != nil {
		return models.ToolOutput{Type: OutputError, Content: fmt.Sprintf("error listing directory: %v", err)}
	}

	var lines []string
	count := 0
	for _, entry := range entries {
		if pattern != "" {
			matched, err := doublestar.Match(pattern, entry.Name())
			if err != nil {
				return models.ToolOutput{Type: OutputError, Content: fmt.Sprintf("invalid pattern: %v", err)}
			}
			if !matched {
				continue
			}
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		kind := "file"
		size := info.Size()
		if entry.IsDir() {
			kind = "dir"
			size = 0
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d\t%s",
			kind, entry.Name(), size, info.ModTime().Format("2006-01-02 15:04:05")))
		count++
	}

	return models.ToolOutput{
		Type:    "directory_listing",
		Content: strings.Join(lines, "\n"),
		Metadata: map[string]interface{}{
			"path":  filepath.Clean(path),
			"count": count,
		},
	}
}

func (t *FileSystemTool) deleteFile(path string) models.ToolOutput {
	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.ToolOutput{
				Type:    "file_deleted",
				Content: fmt.Sprintf("file did not exist: %s", path),
			}
		}
		return models.ToolOutput{Type: OutputError, Content: fmt.Sprintf("error deleting file: %v", err)}
	}
	return models.ToolOutput{
		Type:    "file_deleted",
		Content: fmt.Sprintf("deleted %s", path),
	}
}
