// Package textsvc implements the note AI actions on top of a text generator,
// applying the per-action fallback policy.
package textsvc

import (
	"fmt"
	"strings"
)

// Action names one AI operation.
type Action string

const (
	ActionGenerateTitle Action = "generate_title"
	ActionGenerateTags  Action = "generate_tags"
	ActionSummarize     Action = "summarize"
	ActionFixGrammar    Action = "fix_grammar"
	ActionElaborate     Action = "elaborate"
)

// Actions lists every action in menu order.
var Actions = []Action{
	ActionSummarize,
	ActionFixGrammar,
	ActionElaborate,
	ActionGenerateTags,
	ActionGenerateTitle,
}

// ParseAction accepts the canonical name or a dashed alias ("fix-grammar").
func ParseAction(s string) (Action, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "title", "auto_title":
		return ActionGenerateTitle, nil
	case "tags", "auto_tag":
		return ActionGenerateTags, nil
	case "grammar":
		return ActionFixGrammar, nil
	}
	for _, a := range Actions {
		if string(a) == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// IsTransform reports whether the action rewrites note text and surfaces errors.
func (a Action) IsTransform() bool {
	switch a {
	case ActionSummarize, ActionFixGrammar, ActionElaborate:
		return true
	}
	return false
}

// Label is the menu text for the action.
func (a Action) Label() string {
	switch a {
	case ActionGenerateTitle:
		return "Auto-title"
	case ActionGenerateTags:
		return "Auto-tag"
	case ActionSummarize:
		return "Summarize"
	case ActionFixGrammar:
		return "Fix grammar"
	case ActionElaborate:
		return "Elaborate"
	}
	return string(a)
}
