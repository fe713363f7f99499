// Package tui renders the housekeeping board shown over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/theme"
)

const (
	title          = "ESTADA FELIZ // HOUSEKEEPING BOARD"
	helpLine       = "↑/↓ move · enter cycle status · r refresh · q quit"
	defaultRefresh = 30 * time.Second
)

// Board is the slice of the desk the board needs.
type Board interface {
	Rooms(ctx context.Context) ([]hotel.Room, error)
	UpdateRoomStatus(ctx context.Context, number string, status hotel.RoomStatus) error
}

// Message types consumed by Update.
type (
	roomsMsg   struct{ rooms []hotel.Room }
	updatedMsg struct {
		number string
		status hotel.RoomStatus
	}
	errMsg  struct{ err error }
	tickMsg time.Time
)

// Options customises a Model.
type Options struct {
	Theme    string
	Width    int
	Height   int
	Refresh  time.Duration
	Renderer *lipgloss.Renderer
}

type styles struct {
	header   lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	warning  lipgloss.Style
	muted    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, name string) styles {
	_, b := theme.ForClass(name)
	apply := func(s theme.Style) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(s.Foreground)).
			Background(lipgloss.Color(s.Background)).
			Bold(s.Bold)
	}
	return styles{
		header:   apply(b.Header).Padding(0, 1),
		row:      apply(b.Card),
		selected: apply(b.Selected),
		warning:  apply(b.Warning),
		muted:    r.NewStyle().Foreground(lipgloss.Color(b.Roles.Muted)),
	}
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx     context.Context
	board   Board
	user    hotel.User
	styles  styles
	refresh time.Duration

	width  int
	height int

	rooms   []hotel.Room
	cursor  int
	loaded  bool
	notice  string
	err     error
	pending bool
}

// NewModel builds a board model for user.
func NewModel(ctx context.Context, board Board, user hotel.User, opts Options) Model {
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	if opts.Refresh <= 0 {
		opts.Refresh = defaultRefresh
	}
	return Model{
		ctx:     ctx,
		board:   board,
		user:    user,
		styles:  newStyles(opts.Renderer, opts.Theme),
		refresh: opts.Refresh,
		width:   opts.Width,
		height:  opts.Height,
	}
}

// Init loads the rooms and starts the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

// Update advances model state in response to events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case roomsMsg:
		m.rooms = msg.rooms
		m.loaded = true
		m.err = nil
		m.cursor = clamp(m.cursor, 0, len(m.rooms)-1)
	case updatedMsg:
		m.pending = false
		for i := range m.rooms {
			if m.rooms[i].Number == msg.number {
				m.rooms[i].Status = msg.status
			}
		}
		m.notice = fmt.Sprintf("Room %s is now %s", msg.number, msg.status)
		m.err = nil
	case errMsg:
		m.pending = false
		m.err = msg.err
	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rooms)-1 {
			m.cursor++
		}
	case "r":
		m.notice = "Refreshing…"
		return m, m.load()
	case "enter", " ":
		if m.pending || len(m.rooms) == 0 {
			return m, nil
		}
		room := m.rooms[m.cursor]
		m.pending = true
		return m, m.cycle(room.Number, room.Status.Next())
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		rooms, err := m.board.Rooms(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return roomsMsg{rooms: rooms}
	}
}

func (m Model) cycle(number string, next hotel.RoomStatus) tea.Cmd {
	return func() tea.Msg {
		if err := m.board.UpdateRoomStatus(m.ctx, number, next); err != nil {
			return errMsg{err: err}
		}
		return updatedMsg{number: number, status: next}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Rooms returns the rooms currently shown.
func (m Model) Rooms() []hotel.Room {
	out := make([]hotel.Room, len(m.rooms))
	copy(out, m.rooms)
	return out
}

// Cursor returns the selected row.
func (m Model) Cursor() int { return m.cursor }

// View renders the header, the room list and the prompt line.
func (m Model) View() string {
	return strings.Join([]string{
		m.renderHeader(),
		m.renderRooms(),
		m.renderPrompt(),
	}, "\n")
}

func (m Model) renderHeader() string {
	who := fmt.Sprintf("OPERATOR: %s (%s)", m.user.Name, m.user.Profile)
	return m.styles.header.Render(title) + "\n" + who
}

func (m Model) renderRooms() string {
	if !m.loaded {
		return "Loading rooms…"
	}
	if len(m.rooms) == 0 {
		return "No rooms registered."
	}

	lines := make([]string, 0, len(m.rooms))
	for i, room := range m.rooms {
		line := roomLine(room)
		switch {
		case i == m.cursor:
			line = m.styles.selected.Render("> " + line)
		case room.Status == hotel.RoomDirty:
			line = m.styles.warning.Render("  " + line)
		default:
			line = m.styles.row.Render("  " + line)
		}
		lines = append(lines, line)
	}

	if m.height > 4 && len(lines) > m.height-4 {
		visible := m.height - 4
		from := clamp(m.cursor-visible+1, 0, len(lines)-visible)
		lines = lines[from : from+visible]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPrompt() string {
	switch {
	case m.err != nil:
		return m.styles.warning.Render(hotel.UserMessage(m.err))
	case m.notice != "":
		return m.notice + "\n" + m.styles.muted.Render(helpLine)
	default:
		return m.styles.muted.Render(helpLine)
	}
}

func roomLine(room hotel.Room) string {
	return fmt.Sprintf("%-6s %-9s cap %d", room.Number, room.Status, room.Capacity)
}

// Snapshot renders the board as plain text for sessions without a terminal.
func Snapshot(rooms []hotel.Room, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "as of %s\n", at.UTC().Format(time.RFC3339))
	if len(rooms) == 0 {
		b.WriteString("No rooms registered.\n")
		return b.String()
	}
	for _, room := range rooms {
		b.WriteString(roomLine(room))
		b.WriteByte('\n')
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
