// Flyra TUI
// Terminal client for the Flyra API: watches one flight and fetches
// calming messages on demand. Useful for exercising a running server
// without the mobile app.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flyra-app/flyra-server/pkg/flight"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "Flyra server base URL")
	flightID  = flag.String("flight", "AB61510", "Flight number to watch")
	interval  = flag.Duration("interval", 5*time.Second, "Poll interval")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	simStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	calmStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Width(72)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

type model struct {
	client   *http.Client
	baseURL  string
	flightID string

	record     *flight.Record
	calming    string
	generating bool
	err        error
	spin       int
	lastPoll   time.Time
}

type tickMsg time.Time

type flightMsg struct {
	record *flight.Record
	err    error
}

type calmingMsg struct {
	message string
	err     error
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchFlight polls the flight endpoint once.
func (m model) fetchFlight() tea.Msg {
	endpoint := m.baseURL + "/api/flight?flight_id=" + url.QueryEscape(m.flightID)

	resp, err := m.client.Get(endpoint)
	if err != nil {
		return flightMsg{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return flightMsg{err: fmt.Errorf("flight %s not found", m.flightID)}
	}
	if resp.StatusCode != http.StatusOK {
		return flightMsg{err: fmt.Errorf("server returned HTTP %d", resp.StatusCode)}
	}

	var rec flight.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return flightMsg{err: fmt.Errorf("decode response: %w", err)}
	}
	return flightMsg{record: &rec}
}

// fetchCalming requests a calming message for the watched flight.
func (m model) fetchCalming() tea.Msg {
	endpoint := m.baseURL + "/api/flight/" + url.PathEscape(m.flightID) + "/calming-message"

	resp, err := m.client.Get(endpoint)
	if err != nil {
		return calmingMsg{err: err}
	}
	defer resp.Body.Close()

	var body struct {
		CalmingMessage string `json:"calming_message"`
		Detail         string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return calmingMsg{err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return calmingMsg{err: fmt.Errorf("server: %s", body.Detail)}
	}
	return calmingMsg{message: body.CalmingMessage}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchFlight, tick(*interval))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchFlight
		case "c":
			if !m.generating {
				m.generating = true
				m.calming = ""
				return m, m.fetchCalming
			}
		}

	case tickMsg:
		m.spin = (m.spin + 1) % len(spinnerChars)
		return m, tea.Batch(m.fetchFlight, tick(*interval))

	case flightMsg:
		m.lastPoll = time.Now()
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.record = msg.record
		}

	case calmingMsg:
		m.generating = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.calming = msg.message
		}
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("✈  Flyra — watching %s", m.flightID)))
	b.WriteString("\n\n")

	if m.record == nil {
		if m.err != nil {
			b.WriteString(errStyle.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(labelStyle.Render("Waiting for first update..."))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("r: refresh  c: calming message  q: quit"))
		return b.String()
	}

	rec := m.record

	sourceTag := simStyle.Render(rec.DataSource)
	if rec.IsLive {
		sourceTag = liveStyle.Render(rec.DataSource + " LIVE")
	}

	var card strings.Builder
	row := func(label, value string) {
		card.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(value)))
	}

	row("Status", rec.Status)
	row("Route", fmt.Sprintf("%s → %s", rec.DepartureAirport, rec.ArrivalAirport))
	row("Altitude", fmt.Sprintf("%d ft", rec.AltitudeFt))
	row("Speed", fmt.Sprintf("%d mph", rec.SpeedMph))
	row("Position", fmt.Sprintf("%.4f, %.4f", rec.Latitude, rec.Longitude))
	row("Heading", fmt.Sprintf("%d°", rec.Direction))
	if rec.ETA != nil {
		row("ETA", *rec.ETA)
	}
	if rec.DistanceMiles != nil {
		row("Remaining", fmt.Sprintf("%d mi", *rec.DistanceMiles))
	}
	row("Source", sourceTag)

	b.WriteString(borderStyle.Render(card.String()))
	b.WriteString("\n\n")

	if m.generating {
		b.WriteString(calmStyle.Render(spinnerChars[m.spin] + " Generating calming message..."))
		b.WriteString("\n\n")
	} else if m.calming != "" {
		b.WriteString(calmStyle.Render("💬 " + m.calming))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if !m.lastPoll.IsZero() {
		b.WriteString(labelStyle.Render("Updated " + m.lastPoll.Format("15:04:05")))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("r: refresh  c: calming message  q: quit"))

	return b.String()
}

func main() {
	flag.Parse()

	m := model{
		client:   &http.Client{Timeout: 60 * time.Second},
		baseURL:  strings.TrimRight(*serverURL, "/"),
		flightID: strings.ToUpper(strings.TrimSpace(*flightID)),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
