package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"deepsight-be/internal/config"
)

// ask is a terminal client for the query API. Questions come from the
// arguments, or one per line from stdin when there are none.
func main() {
	cfg := config.Load()

	baseURL := flag.String("api", cfg.App.APIBaseURL, "API base URL")
	device := flag.String("device", "cli-"+uuid.NewString()[:8], "device id sent as X-Device-Id")
	origin := flag.String("from", "", "explicit origin for directions")
	destination := flag.String("to", "", "explicit destination for directions")
	recent := flag.Bool("recent", false, "list recent searches and exit")
	flag.Parse()

	client := NewClient(*baseURL, *device)

	if *recent {
		logs, err := client.Recent(10)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Cyan("Recent searches")
		for _, l := range logs.Logs {
			fmt.Printf("  %s  %s\n", color.HiBlackString(l.UpdatedAt.Format("2006-01-02 15:04")), l.History)
		}
		return
	}

	if flag.NArg() > 0 {
		ask(client, strings.Join(flag.Args(), " "), *origin, *destination)
		return
	}

	color.Cyan("DeepSight heritage assistant (%s). Empty line or Ctrl-D to quit.", *baseURL)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.YellowString("? "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return
		}
		ask(client, line, "", "")
	}
}

func ask(client *Client, question, origin, destination string) {
	res, status, err := client.Ask(question, origin, destination)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	if status >= 400 && res.Category == "" {
		color.Red("Status %d: %s", status, res.Message)
		return
	}

	categoryColor(res.Category).Printf("[%s", res.Category)
	if res.Language != "" {
		categoryColor(res.Category).Printf(" | %s", res.Language)
	}
	if res.Demoted {
		categoryColor(res.Category).Print(" | fallback")
	}
	categoryColor(res.Category).Printf("] %dms\n", res.TookMs)

	fmt.Println(res.Response)
	for _, img := range res.Images {
		color.Blue("  image: %s", img)
	}
	fmt.Println()
}

func categoryColor(category string) *color.Color {
	switch category {
	case "time":
		return color.New(color.FgGreen, color.Bold)
	case "distance":
		return color.New(color.FgMagenta, color.Bold)
	case "invalid":
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}
