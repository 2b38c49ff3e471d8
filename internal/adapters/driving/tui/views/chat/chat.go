// Package chat provides the question answering view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// ErrChatUnavailable is reported when no chat service is configured.
var ErrChatUnavailable = errors.New("chat service not available")

// Turn is one question and its answer.
type Turn struct {
	Question   string
	Answer     string
	Confidence float64
	Fallback   bool
	Err        error
}

// View is the chat transcript plus question input.
type View struct {
	styles *styles.Styles
	chat   driving.ChatService
	ctx    context.Context
	input  *input.ChatInput

	analysisID  string
	sessionID   string
	turns       []Turn
	suggestions []string
	nextSuggest int
	pending     bool
	width       int
	height      int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, chat driving.ChatService) *View {
	return &View{
		styles: s,
		chat:   chat,
		ctx:    context.Background(),
		input:  input.NewChatInput(s),
		width:  80,
		height: 24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetAnalysis points the view at an analysis. Switching to a different
// analysis starts a new session. It returns a command loading suggestions.
func (v *View) SetAnalysis(id string) tea.Cmd {
	if id != v.analysisID {
		v.analysisID = id
		v.sessionID = ""
		v.turns = nil
		v.suggestions = nil
		v.nextSuggest = 0
		v.pending = false
		v.input.Reset()
	}
	return tea.Batch(v.input.Focus(), v.loadSuggestions())
}

func (v *View) loadSuggestions() tea.Cmd {
	if v.chat == nil || v.analysisID == "" || len(v.suggestions) > 0 {
		return nil
	}
	ctx, svc, id := v.ctx, v.chat, v.analysisID
	return func() tea.Msg {
		qs, err := svc.SuggestedQuestions(ctx, id)
		return messages.SuggestionsLoaded{AnalysisID: id, Questions: qs, Err: err}
	}
}

func (v *View) ask(question string) tea.Cmd {
	svc := v.chat
	ctx := v.ctx
	req := domain.ChatRequest{
		Message:    question,
		AnalysisID: v.analysisID,
		SessionID:  v.sessionID,
	}
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Question: question, Err: ErrChatUnavailable}
		}
		reply, err := svc.Ask(ctx, req)
		return messages.AnswerReceived{Question: question, Reply: reply, Err: err}
	}
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			v.input.Blur()
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewReview} }
		case tea.KeyEnter:
			question := strings.TrimSpace(v.input.Value())
			if question == "" || v.pending {
				return v, nil
			}
			v.pending = true
			v.input.Reset()
			return v, v.ask(question)
		case tea.KeyTab:
			if len(v.suggestions) > 0 {
				v.input.SetValue(v.suggestions[v.nextSuggest%len(v.suggestions)])
				v.nextSuggest++
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case messages.AnswerReceived:
		v.pending = false
		t := Turn{Question: msg.Question, Err: msg.Err}
		if msg.Reply != nil {
			t.Answer = msg.Reply.Text
			t.Confidence = msg.Reply.Confidence
			t.Fallback = msg.Reply.Fallback
			v.sessionID = msg.Reply.SessionID
		}
		v.turns = append(v.turns, t)
		return v, nil

	case messages.SuggestionsLoaded:
		if msg.AnalysisID == v.analysisID && msg.Err == nil {
			v.suggestions = msg.Questions
			v.nextSuggest = 0
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the transcript and input.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Ask about " + v.analysisID))
	b.WriteString("\n\n")

	if len(v.turns) == 0 {
		if len(v.suggestions) > 0 {
			b.WriteString(v.styles.Subtitle.Render("Suggested questions (tab to use):"))
			b.WriteString("\n")
			for _, q := range v.suggestions {
				b.WriteString(v.styles.Muted.Render("  - " + q))
				b.WriteString("\n")
			}
		} else {
			b.WriteString(v.styles.Muted.Render("Answers are grounded in the document's clauses."))
			b.WriteString("\n")
		}
	}

	for _, t := range v.visibleTurns() {
		b.WriteString(v.styles.Question.Render("> " + t.Question))
		b.WriteString("\n")
		switch {
		case t.Err != nil:
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", t.Err)))
		case t.Fallback:
			b.WriteString(v.styles.Warning.Render(t.Answer))
		default:
			b.WriteString(v.styles.Answer.Width(v.textWidth()).Render(t.Answer))
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("confidence %.2f", t.Confidence)))
		}
		b.WriteString("\n\n")
	}

	if v.pending {
		b.WriteString(v.styles.Muted.Render("Thinking..."))
		b.WriteString("\n")
	}
	b.WriteString(v.input.View())
	return b.String()
}

// visibleTurns keeps the newest turns that roughly fit the screen.
func (v *View) visibleTurns() []Turn {
	n := (v.height - 8) / 4
	if n < 1 {
		n = 1
	}
	if len(v.turns) <= n {
		return v.turns
	}
	return v.turns[len(v.turns)-n:]
}

func (v *View) textWidth() int {
	w := v.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// SessionID returns the current chat session.
func (v *View) SessionID() string {
	return v.sessionID
}

// Pending reports whether a question is awaiting an answer.
func (v *View) Pending() bool {
	return v.pending
}

// Suggestions returns the loaded suggested questions.
func (v *View) Suggestions() []string {
	return v.suggestions
}

// InputValue returns the text currently in the input.
func (v *View) InputValue() string {
	return v.input.Value()
}
