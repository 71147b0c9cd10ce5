package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintSession displays a single session record with formatting
func PrintSession(s *session.Session) {
	fmt.Printf("%s %s %s\n",
		"📡",
		BoldStyle.Render(s.Target),
		DimStyle.Render(fmt.Sprintf("(%s)", s.ID)),
	)
	fmt.Printf("   %s %s\n", DimStyle.Render("Status:"), string(s.Status))
	fmt.Printf("   %s %s via %s (%s)\n", DimStyle.Render("Traffic:"), s.Bandwidth, s.Protocol, s.BindAddr)
	fmt.Printf("   %s %s\n", DimStyle.Render("Interface:"), s.Iface)
	fmt.Printf("   %s %s\n", DimStyle.Render("Output:"), s.OutputPath)
	if s.BackupPath != "" {
		fmt.Printf("   %s %s\n", DimStyle.Render("Archived:"), s.BackupPath)
	}
	if s.AgentStderrLog != "" {
		fmt.Printf("   %s %s\n", DimStyle.Render("Agent log:"), s.AgentStderrLog)
	}
	fmt.Printf("   %s %d\n", DimStyle.Render("Load exit code:"), s.LoadExitCode)
	fmt.Printf("   %s %s\n", DimStyle.Render("Started:"), FormatTime(s.StartedAt))
	if !s.StoppedAt.IsZero() {
		fmt.Printf("   %s %s\n", DimStyle.Render("Stopped:"), FormatTime(s.StoppedAt))
	}
}

// PrintSessionList displays recorded sessions as a table
func PrintSessionList(sessions []*session.Session) {
	if len(sessions) == 0 {
		Info("No recorded sessions")
		return
	}

	tbl := NewTable("ID", "TARGET", "IFACE", "STATUS", "EXIT", "OUTPUT", "AGE")
	for _, s := range sessions {
		output := "-"
		if s.OutputExists {
			output = s.OutputPath
		}
		tbl.AddRow(shortID(s.ID), s.Target, s.Iface, string(s.Status), s.LoadExitCode, output, FormatDuration(time.Since(s.StartedAt)))
	}
	tbl.Print()
}

// shortID trims a UUID to its first segment for listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// FormatTime formats a timestamp for display
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
