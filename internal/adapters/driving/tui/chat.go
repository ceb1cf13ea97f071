// Package tui provides the interactive chat session over an indexed
// document corpus.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driving"
)

// exchange is one asked question with its (eventual) answer.
type exchange struct {
	question string
	answer   domain.Answer
	err      error
	pending  bool
}

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	answer domain.Answer
}

// errMsg carries a failed answer back into the update loop.
type errMsg struct {
	err error
}

// Chat is the bubbletea model for the interactive question session.
type Chat struct {
	styles  *Styles
	input   textinput.Model
	spin    spinner.Model
	view    viewport.Model
	history []exchange

	svc driving.QueryService
	ctx context.Context

	width  int
	height int
	ready  bool
	busy   bool
}

// NewChat creates a chat model bound to the query service.
func NewChat(svc driving.QueryService) *Chat {
	input := textinput.New()
	input.Placeholder = "Ask a question (Esc to quit)"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Chat{
		styles: DefaultStyles(),
		input:  input,
		spin:   spin,
		svc:    svc,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for answer calls.
func (c *Chat) WithContext(ctx context.Context) *Chat {
	c.ctx = ctx
	return c
}

// Init initialises the model.
func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.view = viewport.New(msg.Width, msg.Height-4)
		c.ready = true
		c.refresh()
		return c, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return c, tea.Quit
		case tea.KeyEnter:
			return c, c.submit()
		}

	case answerMsg:
		c.finish(msg.answer, nil)
		return c, nil

	case errMsg:
		c.finish(domain.Answer{}, msg.err)
		return c, nil

	case spinner.TickMsg:
		if !c.busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		c.refresh()
		return c, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	c.view, cmd = c.view.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return c, tea.Batch(cmds...)
}

// submit starts answering the typed question, if any.
func (c *Chat) submit() tea.Cmd {
	question := strings.TrimSpace(c.input.Value())
	if question == "" || c.busy {
		return nil
	}

	c.history = append(c.history, exchange{question: question, pending: true})
	c.input.Reset()
	c.busy = true
	c.refresh()

	ask := func() tea.Msg {
		answer, err := c.svc.Answer(c.ctx, question)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{answer: answer}
	}
	return tea.Batch(c.spin.Tick, ask)
}

// finish records the outcome of the pending exchange.
func (c *Chat) finish(answer domain.Answer, err error) {
	c.busy = false
	if len(c.history) == 0 {
		return
	}
	last := &c.history[len(c.history)-1]
	last.pending = false
	last.answer = answer
	last.err = err
	c.refresh()
}

// refresh re-renders the scrollback into the viewport.
func (c *Chat) refresh() {
	if !c.ready {
		return
	}
	c.view.SetContent(c.renderHistory())
	c.view.GotoBottom()
}

func (c *Chat) renderHistory() string {
	var b strings.Builder
	for _, ex := range c.history {
		b.WriteString(c.styles.Question.Render("Query: "+ex.question) + "\n")
		switch {
		case ex.pending:
			b.WriteString(c.spin.View() + " Searching documents...\n")
		case ex.err != nil:
			b.WriteString(c.styles.Error.Render("Error: "+ex.err.Error()) + "\n")
		default:
			b.WriteString(c.styles.Answer.Render(ex.answer.Text) + "\n")
			if len(ex.answer.Citations) > 0 {
				b.WriteString(c.styles.Source.Render("--- Sources ---") + "\n")
				for _, cit := range ex.answer.Citations {
					b.WriteString(c.styles.Source.Render(cit.Display) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the chat.
func (c *Chat) View() string {
	if !c.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(c.styles.Title.Render("Insight") + "\n")
	b.WriteString(c.view.View() + "\n")
	b.WriteString(c.input.View() + "\n")
	b.WriteString(c.styles.Help.Render("Enter: ask  Esc: quit"))
	return b.String()
}
