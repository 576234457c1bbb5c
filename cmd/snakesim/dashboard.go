package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekline/selfplay"
)

type GameUpdate struct {
	WorkerID int
	Result   selfplay.Result
	Rows     int
}

type model struct {
	gamesPlayed int
	totalRows   int
	ticks       int64
	bestScore   int32
	reasons     map[string]int
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
	quit        func()
}

func initialModel(updates chan GameUpdate, quit func()) model {
	return model{
		startTime: time.Now(),
		reasons:   map[string]int{},
		updates:   updates,
		quit:      quit,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.quit != nil {
				m.quit()
			}
			return m, tea.Quit
		}
	case TickMsg:
		m.ticks = totalTicks.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalRows += msg.Rows
		m.reasons[msg.Result.Reason]++
		if msg.Result.Score > m.bestScore {
			m.bestScore = msg.Result.Score
		}
		line := fmt.Sprintf("Worker %d: score %d, ticks %d, length %.2f, %s",
			msg.WorkerID, msg.Result.Score, msg.Result.Ticks, msg.Result.Length, msg.Result.Reason)
		m.recentGames = append([]string{line}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := float64(m.gamesPlayed) / duration.Seconds()
	ticksPerSec := float64(m.ticks) / duration.Seconds()
	if duration.Seconds() < 1 {
		gamesPerSec = 0
		ticksPerSec = 0
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games Played: %d\n", m.gamesPlayed)
	fmt.Fprintf(&sb, "Rows:         %d\n", m.totalRows)
	fmt.Fprintf(&sb, "Ticks:        %d\n", m.ticks)
	fmt.Fprintf(&sb, "Best Score:   %d\n", m.bestScore)
	fmt.Fprintf(&sb, "Duration:     %s\n", duration.Round(time.Second))
	fmt.Fprintf(&sb, "Games/Sec:    %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Ticks/Sec:    %.2f\n", ticksPerSec)
	fmt.Fprintf(&sb, "Endings:      wall=%d self=%d cap=%d\n\n",
		m.reasons[selfplay.ReasonWall], m.reasons[selfplay.ReasonSelf], m.reasons[selfplay.ReasonTickCap])

	sb.WriteString("Recent Games:\n")
	for _, g := range m.recentGames {
		sb.WriteString(g + "\n")
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}
