package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/api"
	"github.com/gravitrone/nebula-notes/internal/session"
	"github.com/gravitrone/nebula-notes/internal/textsvc"
	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

// TextService is the part of *textsvc.Service the UI calls.
type TextService interface {
	TitleFrom(ctx context.Context, content string) (string, error)
	TagsFrom(ctx context.Context, content string) ([]string, error)
	Transform(ctx context.Context, action textsvc.Action, text string) (string, error)
}

// TextFactory builds the text service on first AI use. A missing API key
// surfaces here.
type TextFactory func(ctx context.Context) (TextService, error)

// textProvider caches the service once construction succeeds. Failed
// attempts are retried on the next request.
type textProvider struct {
	build TextFactory

	mu  sync.Mutex
	svc TextService
}

func (p *textProvider) get(ctx context.Context) (TextService, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.svc != nil {
		return p.svc, nil
	}
	if p.build == nil {
		return nil, api.ErrMissingAPIKey
	}
	svc, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.svc = svc
	return svc, nil
}

// --- Messages ---

type aiDoneMsg struct {
	req session.Request
	res session.Result
	err error
}

// --- Tools Menu ---

type toolsMenu struct {
	open      bool
	index     int
	lineScope bool
}

var toolActions = textsvc.Actions

func (m toolsMenu) items() []components.MenuItem {
	items := make([]components.MenuItem, len(toolActions))
	for i, action := range toolActions {
		desc := "whole note"
		if action.IsTransform() && m.lineScope {
			desc = "current line"
		}
		items[i] = components.MenuItem{
			Key:   fmt.Sprintf("%d", i+1),
			Label: action.Label(),
			Desc:  desc,
		}
	}
	return items
}

func (a App) renderTools() string {
	return components.MenuDialog("AI Tools", a.tools.items(), a.tools.index, "tab: toggle line scope | esc: close")
}

func (a App) handleToolsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		a.tools.open = false
	case isUp(msg):
		if a.tools.index > 0 {
			a.tools.index--
		}
	case isDown(msg):
		if a.tools.index < len(toolActions)-1 {
			a.tools.index++
		}
	case isNextField(msg):
		a.tools.lineScope = !a.tools.lineScope
	case isEnter(msg):
		a.tools.open = false
		return a.startAI(toolActions[a.tools.index], a.tools.lineScope)
	default:
		if idx, ok := toolKey(msg); ok && idx < len(toolActions) {
			a.tools.open = false
			a.tools.index = idx
			return a.startAI(toolActions[idx], a.tools.lineScope)
		}
	}
	return a, nil
}

// --- Requests ---

// startAI claims the session's AI gate and launches the request. With
// lineScope, transforms act on the line under the content cursor.
func (a App) startAI(action textsvc.Action, lineScope bool) (tea.Model, tea.Cmd) {
	if a.sess == nil {
		return a, a.setToast("info", "Select a note first.")
	}
	var sel session.Span
	if lineScope && action.IsTransform() {
		sel = a.editor.CurrentLine()
	}
	req, err := a.sess.BeginAI(action, sel)
	if errors.Is(err, session.ErrBusy) {
		return a, a.setToast("warning", "An AI request is already running.")
	}
	if err != nil {
		return a, a.setError(err)
	}
	a.busy = &req
	a.busySince = time.Now()
	a.log.Debug("ai request", zap.String("action", string(action)), zap.String("id", req.NoteID))
	return a, tea.Batch(a.aiCmd(req), a.spinner.Tick)
}

// aiCmd runs req off the UI loop. Title and tag generation only fail on a
// bad credential; the transforms report every error.
func (a App) aiCmd(req session.Request) tea.Cmd {
	text := a.text
	timeout := a.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		svc, err := text.get(ctx)
		if err != nil {
			return aiDoneMsg{req: req, err: fmt.Errorf("AI unavailable: %w", err)}
		}
		var res session.Result
		switch req.Action {
		case textsvc.ActionGenerateTitle:
			res.Text, err = svc.TitleFrom(ctx, req.Input)
		case textsvc.ActionGenerateTags:
			res.Tags, err = svc.TagsFrom(ctx, req.Input)
		default:
			res.Text, err = svc.Transform(ctx, req.Action, req.Input)
		}
		return aiDoneMsg{req: req, res: res, err: err}
	}
}

func (a App) handleAIDone(msg aiDoneMsg) (tea.Model, tea.Cmd) {
	if a.busy != nil && a.busy.Generation == msg.req.Generation {
		a.busy = nil
	}
	if a.sess == nil || a.sess.Generation() != msg.req.Generation {
		a.log.Debug("dropping stale ai result", zap.String("id", msg.req.NoteID))
		return a, nil
	}
	if msg.err != nil {
		a.sess.EndAI(msg.req)
		a.log.Warn("ai request failed", zap.String("action", string(msg.req.Action)), zap.Error(msg.err))
		if api.IsAuthError(msg.err) {
			return a, a.setError(fmt.Errorf("%w: set GEMINI_API_KEY or run nebula-notes config init", msg.err))
		}
		return a, a.setError(msg.err)
	}
	if err := a.sess.ApplyAI(msg.req, msg.res); err != nil {
		a.log.Debug("ai result not applied", zap.Error(err))
		return a, nil
	}
	a.editor.Sync(a.sess.Buffer())
	a.refreshList()
	return a, a.setToast("success", msg.req.Action.Label()+" done.")
}

func (a App) renderBusy() string {
	if a.busy == nil {
		return ""
	}
	elapsed := time.Since(a.busySince).Truncate(time.Second)
	body := fmt.Sprintf("%s %s...\n\n%s", a.spinner.View(), a.busy.Action.Label(), MutedStyle.Render(elapsed.String()))
	return components.TitledBox("Working", BusyStyle.Render(body), a.width)
}
