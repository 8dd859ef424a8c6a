package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"StockTracker/internal/auth"
	"StockTracker/internal/dashboard"
	"StockTracker/internal/notifier"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1)
	promptStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptAnonStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headlineStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newShellCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				log.Printf("[FATAL] %v", err)
				return err
			}
			defer a.Close()

			// keep log output from interleaving with the prompt
			log.SetOutput(io.Discard)
			defer log.SetOutput(os.Stderr)

			runShell(a.session, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}
}

func runShell(session *dashboard.Session, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, bannerStyle.Render("📈 Global Stock Tracker (India + USA)"))
	if !session.Status().Configured {
		fmt.Fprintln(out, errorStyle.Render(notifier.SetupInstructions()))
	} else {
		fmt.Fprintln(out, dimStyle.Render("Type 'otp <email>' to sign in, 'help' for commands."))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt(session))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		reply := session.HandleCommand(ctx, line)
		cancel()
		fmt.Fprintln(out, render(reply))
	}
}

func prompt(session *dashboard.Session) string {
	if st := session.Status(); st.State == auth.StateAuthenticated {
		return promptStyle.Render(st.Email + " > ")
	}
	return promptAnonStyle.Render("guest > ")
}

// render colours errors and highlights the headline of a quote.
func render(reply string) string {
	if strings.HasPrefix(reply, "Error:") || strings.Contains(reply, "not found or no data") ||
		strings.HasPrefix(reply, "Incorrect OTP") || strings.HasPrefix(reply, "OTP has expired") {
		return errorStyle.Render(reply)
	}
	head, rest, found := strings.Cut(reply, "\n")
	if found && strings.Contains(head, " – ") {
		return headlineStyle.Render(head) + "\n" + rest
	}
	return reply
}
