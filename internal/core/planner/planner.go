package planner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ExoZora/exozora-core/internal/core"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan is returned for plan documents that cannot be turned into
// tasks.
var ErrInvalidPlan = errors.New("invalid plan document")

// Planner turns raw input into an untrusted Plan.
type Planner interface {
	Plan(ctx context.Context, input string) (*core.Plan, error)
}

// DocumentPlanner reads YAML plan documents:
//
//	tasks:
//	  - create_dir: build
//	  - write_file: {path: build/output.txt, contents: hello}
//	  - run: echo hello
//	  - run: {command: echo, args: [hello]}
type DocumentPlanner struct{}

// NewDocumentPlanner creates a YAML plan document planner.
func NewDocumentPlanner() *DocumentPlanner {
	return &DocumentPlanner{}
}

// Plan parses input as a plan document.
func (p *DocumentPlanner) Plan(ctx context.Context, input string) (*core.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseDocument([]byte(input))
}

type document struct {
	Tasks []taskSpec `yaml:"tasks"`
}

type taskSpec struct {
	task core.Task
}

// ParseDocument parses a YAML plan document. An empty document yields an
// empty plan; unknown top-level keys and trailing documents are errors.
func ParseDocument(data []byte) (*core.Plan, error) {
	if strings.TrimSpace(string(data)) == "" {
		return core.NewPlan(), nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return core.NewPlan(), nil
		}
		return nil, wrapInvalid(err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, wrapInvalid(err)
		}
		return nil, invalidf(&extra, "expected a single document")
	}

	tasks := make([]core.Task, 0, len(doc.Tasks))
	for _, spec := range doc.Tasks {
		tasks = append(tasks, spec.task)
	}
	return core.NewPlan(tasks...), nil
}

func wrapInvalid(err error) error {
	if errors.Is(err, ErrInvalidPlan) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
}

func (s *taskSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return invalidf(node, "each task must be a mapping with exactly one key")
	}
	key, value := node.Content[0].Value, node.Content[1]

	var err error
	switch key {
	case "create_dir":
		s.task, err = decodeCreateDir(value)
	case "write_file":
		s.task, err = decodeWriteFile(value)
	case "run":
		s.task, err = decodeRun(value)
	default:
		err = invalidf(node, "unknown task %q", key)
	}
	return err
}

func decodeCreateDir(node *yaml.Node) (core.Task, error) {
	path := node
	if isNull(node) {
		path = nil
	} else if node.Kind != yaml.ScalarNode {
		fields, err := mapping(node, "path")
		if err != nil {
			return nil, err
		}
		path = fields["path"]
	}
	if path == nil || path.Value == "" {
		return nil, invalidf(node, "create_dir requires a path")
	}
	return core.CreateDir{Path: path.Value}, nil
}

func decodeWriteFile(node *yaml.Node) (core.Task, error) {
	fields, err := mapping(node, "path", "contents")
	if err != nil {
		return nil, err
	}
	path, ok := fields["path"]
	if !ok || path.Value == "" {
		return nil, invalidf(node, "write_file requires a path")
	}
	task := core.WriteFile{Path: path.Value}
	if contents, ok := fields["contents"]; ok {
		task.Contents = contents.Value
	}
	return task, nil
}

func decodeRun(node *yaml.Node) (core.Task, error) {
	if isNull(node) {
		return nil, invalidf(node, "run requires a command")
	}
	if node.Kind == yaml.ScalarNode {
		argv, err := SplitCommandLine(node.Value)
		if err != nil {
			return nil, invalidf(node, "%v", err)
		}
		if len(argv) == 0 {
			return nil, invalidf(node, "empty command")
		}
		return core.RunCommand{Command: argv[0], Args: argv[1:]}, nil
	}

	fields, err := mapping(node, "command", "args")
	if err != nil {
		return nil, err
	}
	command, ok := fields["command"]
	if !ok || command.Value == "" {
		return nil, invalidf(node, "run requires a command")
	}

	task := core.RunCommand{Command: command.Value}
	if args, ok := fields["args"]; ok {
		if err := args.Decode(&task.Args); err != nil {
			return nil, invalidf(args, "args must be a list of strings")
		}
	}
	return task, nil
}

// mapping returns the scalar-keyed fields of node, rejecting keys outside
// allowed. Null values are left out.
func mapping(node *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, invalidf(node, "expected a mapping")
	}

	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if !contains(allowed, key) {
			return nil, invalidf(node.Content[i], "unknown field %q", key)
		}
		if isNull(value) {
			continue
		}
		if key != "args" && value.Kind != yaml.ScalarNode {
			return nil, invalidf(value, "field %q must be a string", key)
		}
		fields[key] = value
	}
	return fields, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func invalidf(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidPlan, node.Line, fmt.Sprintf(format, args...))
}
