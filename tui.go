package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"onitama/selfplay"
)

const recentGames = 10

type tickMsg time.Time

// finishedMsg is sent once the self-play pool has stopped.
type finishedMsg struct{}

type dashboard struct {
	target    int
	games     int
	samples   int
	plies     int
	decided   int
	startTime time.Time
	recent    []string
	updates   <-chan selfplay.GameResult
	finished  bool
}

func newDashboard(updates <-chan selfplay.GameResult, target int) dashboard {
	return dashboard{
		target:    target,
		startTime: time.Now(),
		updates:   updates,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForUpdate(updates <-chan selfplay.GameResult) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m dashboard) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tickCmd()
	case finishedMsg:
		m.finished = true
		return m, tea.Quit
	case selfplay.GameResult:
		m.games++
		m.samples += msg.Samples
		m.plies += msg.Plies
		if msg.Result.IsWin() {
			m.decided++
		}
		line := fmt.Sprintf("%s: %s, plies %d, samples %d", msg.GameID, msg.Result, msg.Plies, msg.Samples)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentGames {
			m.recent = m.recent[:recentGames]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m dashboard) View() string {
	elapsed := time.Since(m.startTime)
	gamesPerSec, pliesPerSec := 0.0, 0.0
	if elapsed >= time.Second {
		gamesPerSec = float64(m.games) / elapsed.Seconds()
		pliesPerSec = float64(m.plies) / elapsed.Seconds()
	}

	var sb strings.Builder
	if m.target > 0 {
		fmt.Fprintf(&sb, "Games:     %d / %d\n", m.games, m.target)
	} else {
		fmt.Fprintf(&sb, "Games:     %d\n", m.games)
	}
	fmt.Fprintf(&sb, "Decided:   %d\n", m.decided)
	fmt.Fprintf(&sb, "Samples:   %d\n", m.samples)
	fmt.Fprintf(&sb, "Duration:  %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(&sb, "Games/sec: %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Plies/sec: %.2f\n\n", pliesPerSec)

	sb.WriteString("Recent games:\n")
	for _, line := range m.recent {
		sb.WriteString(line + "\n")
	}
	if m.finished {
		sb.WriteString("\nDone.\n")
	} else {
		sb.WriteString("\nPress q to stop.\n")
	}
	return sb.String()
}
