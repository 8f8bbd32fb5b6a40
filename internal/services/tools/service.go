package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/infrastructure/anthropic"
	"github.com/sashabaranov/go-openai"
)

// Parameter describes one entry of a tool's typed parameter schema
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
}

// Tool is the uniform capability contract. Execute yields a sequence
// of outputs; the channel closes when execution finishes. Failures
// mid-execution are emitted as outputs with Type "error".
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Execute(ctx context.Context, args map[string]interface{}) (<-chan models.ToolOutput, error)
}

// OutputError tags tool outputs that represent a failure
const OutputError = "error"

// Service is the tool registry: a name -> implementation map resolved
// at startup
type Service struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewService() *Service {
	s := &Service{
		tools: make(map[string]Tool),
	}

	s.Register(NewFileSystemTool())
	s.Register(NewTerminalTool())
	s.Register(NewGitTool())

	return s
}

// NewEmptyService returns a registry with no tools, for tests and
// custom wiring
func NewEmptyService() *Service {
	return &Service{tools: make(map[string]Tool)}
}

func (s *Service) Register(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[t.Name()]; !exists {
		s.order = append(s.order, t.Name())
	}
	s.tools[t.Name()] = t
}

func (s *Service) Get(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, exists := s.tools[name]
	return t, exists
}

// All returns the registered tools in registration order
func (s *Service) All() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tools[name])
	}
	return out
}

// ValidateArgs checks the argument map against the tool's schema
// before anything is recorded or executed
func ValidateArgs(t Tool, args map[string]interface{}) error {
	for _, param := range t.Parameters() {
		value, present := args[param.Name]
		if !present {
			if param.Required {
				return fmt.Errorf("missing required parameter %q for tool %s", param.Name, t.Name())
			}
			continue
		}
		if param.Type == "string" {
			if _, ok := value.(string); !ok {
				return fmt.Errorf("parameter %q for tool %s must be a string", param.Name, t.Name())
			}
		}
	}
	return nil
}

// Definitions exports the registry as the provider's tool-declaration
// shape: {name, description, input_schema: {type: object, properties,
// required}}
func (s *Service) Definitions() []anthropic.ToolDefinition {
	all := s.All()

	defs := make([]anthropic.ToolDefinition, 0, len(all))
	for _, t := range all {
		properties := make(map[string]anthropic.PropertySchema)
		required := []string{}

		for _, param := range t.Parameters() {
			properties[param.Name] = anthropic.PropertySchema{
				Type:        param.Type,
				Description: param.Description,
				Enum:        param.Enum,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}

		defs = append(defs, anthropic.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: anthropic.InputSchema{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		})
	}
	return defs
}

// OpenAITools exports the registry as OpenAI function declarations for
// the non-streaming completion path
func (s *Service) OpenAITools() []openai.Tool {
	all := s.All()

	out := make([]openai.Tool, 0, len(all))
	for _, t := range all {
		properties := make(map[string]interface{})
		required := []string{}

		for _, param := range t.Parameters() {
			schema := map[string]interface{}{
				"type":        param.Type,
				"description": param.Description,
			}
			if len(param.Enum) > 0 {
				schema["enum"] = param.Enum
			}
			properties[param.Name] = schema
			if param.Required {
				required = append(required, param.Name)
			}
		}

		out = append(out, openai.Tool{
			Type: "function",
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return out
}
