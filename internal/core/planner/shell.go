package planner

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ErrInvalidCommandLine is returned for a command line that is not a single
// simple command made of literal words.
var ErrInvalidCommandLine = errors.New("invalid command line")

// SplitCommandLine splits a shell-style command line into argv using POSIX
// quoting rules. Only a single simple command with literal words is
// accepted: pipes, lists, redirections, assignments, parameter expansion
// and command substitution are rejected, since a RunCommand carries argv and
// never goes through a shell.
func SplitCommandLine(line string) ([]string, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangPOSIX))
	file, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
	}

	if len(file.Stmts) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one command, got %d", ErrInvalidCommandLine, len(file.Stmts))
	}
	stmt := file.Stmts[0]
	if stmt.Negated || stmt.Background || stmt.Coprocess || len(stmt.Redirs) > 0 {
		return nil, fmt.Errorf("%w: shell operators are not allowed", ErrInvalidCommandLine)
	}

	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok {
		return nil, fmt.Errorf("%w: not a simple command", ErrInvalidCommandLine)
	}
	if len(call.Assigns) > 0 {
		return nil, fmt.Errorf("%w: variable assignments are not allowed", ErrInvalidCommandLine)
	}

	argv := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		if reason := nonLiteral(word); reason != "" {
			return nil, fmt.Errorf("%w: %s in %q", ErrInvalidCommandLine, reason, line)
		}
		lit, err := expand.Literal(nil, word)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
		}
		argv = append(argv, lit)
	}
	return argv, nil
}

func nonLiteral(word *syntax.Word) string {
	var reason string
	syntax.Walk(word, func(node syntax.Node) bool {
		switch node.(type) {
		case *syntax.ParamExp:
			reason = "parameter expansion"
		case *syntax.CmdSubst:
			reason = "command substitution"
		case *syntax.ArithmExp:
			reason = "arithmetic expansion"
		case *syntax.ProcSubst:
			reason = "process substitution"
		}
		return reason == ""
	})
	return reason
}
