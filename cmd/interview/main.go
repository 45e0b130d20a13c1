// Command interview runs an interview against the server from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Corphon/InterviewScribe/internal/client"
	"github.com/Corphon/InterviewScribe/internal/tui"
	"github.com/Corphon/InterviewScribe/internal/utils"
	"github.com/Corphon/InterviewScribe/internal/workflow"
)

func main() {
	baseURL := client.DefaultBaseURL
	if v := os.Getenv("INTERVIEW_API_URL"); v != "" {
		baseURL = v
	}
	flag.StringVar(&baseURL, "api", baseURL, "base URL of the interview API")
	timeout := flag.Duration("timeout", 90*time.Second, "per-request timeout")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	// the terminal belongs to the UI, so logs only go to a file
	logger := utils.NopLogger()
	if *logPath != "" {
		logger = utils.NewLogger(io.Discard, utils.DEBUG)
		if err := logger.OpenFile(*logPath); err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	controller := workflow.NewController(client.New(baseURL, *timeout), logger)
	p := tea.NewProgram(tui.New(ctx, controller), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "interview: %v\n", err)
		os.Exit(1)
	}
}
