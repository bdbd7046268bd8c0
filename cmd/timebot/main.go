package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"telegram_booking_assistant/internal/config"
	"telegram_booking_assistant/internal/llm"
)

// timeInstruction builds the system prompt. Each question gets a fresh prompt
// so the embedded clock reading is never stale.
func timeInstruction(now time.Time) string {
	zone, _ := now.Zone()
	currentTime := now.Format("2006-01-02 15:04:05") + " " + zone

	return `You are a helpful assistant that provides time-related information. You have extensive knowledge
        of world geography, countries, cities, and their respective timezones. When a location is mentioned in the question,
        you should determine the appropriate timezone and convert the time accordingly. If no location is specified, use the
        provided system time.

        The current system time is: ` + currentTime + `

        When responding:
        1. If a location is mentioned, identify its timezone and convert the time appropriately
        2. Include both the time and the timezone/location in your response, ensure you get the accurate current timezone, before perfoming operations and factor in daylight savings also ensure you dont confuse GMT and UTC, use UTC at all times, very important
        3. Use a natural, conversational tone while being precise about the time
        4. For time differences or durations, do not explain your calculations `
}

// isQuit reports whether the input ends the program
func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func main() {
	cfg, err := config.LoadLLM()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})

	fmt.Println("Welcome to the Time Bot! Type 'quit' to exit.")
	fmt.Println("Ask me about the time anywhere in the world!")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYour question: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if isQuit(input) {
			fmt.Println("Goodbye!")
			break
		}

		if input == "" {
			fmt.Println("Please ask a question about time!")
			continue
		}

		reply, err := ask(client, input)
		if err != nil {
			fmt.Printf("\nError communicating with the model: %v\n", err)
			continue
		}
		fmt.Println("\nResponse:", reply)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
}

// ask sends one stateless question to the model
func ask(client llm.Client, question string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	return client.Complete(ctx, llm.Request{
		Profile:   llm.ProfileTime,
		System:    timeInstruction(time.Now()),
		Messages:  []llm.Message{{Role: "user", Content: question}},
		MaxTokens: 1000,
	})
}
