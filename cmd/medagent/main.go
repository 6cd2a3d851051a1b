// Command medagent is an interactive multi-tool medical question agent.
// It routes each question to a dataset tool (heart, cancer, diabetes) or
// the web knowledge tool and prints the formatted answer.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aqua777/go-medagent/agent"
	"github.com/aqua777/go-medagent/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	a, err := agent.FromConfig(cfg, agent.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Multi-tool medical agent ready. Type 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nUser> ")
		if !scanner.Scan() {
			fmt.Println("\nExiting.")
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "quit" || q == "exit" {
			break
		}

		answer, toolID := a.Answer(context.Background(), question)

		fmt.Printf("[Routing to: %s]\n", toolID)
		fmt.Println("\n=== Agent response ===")
		fmt.Println()
		fmt.Println(answer)
		fmt.Println("\n======================")
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading input: %v\n", err)
		os.Exit(1)
	}
}
