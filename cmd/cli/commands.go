package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	category string
	window   string
	since    string
	announce bool
	bulkFile string
	date     string
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(damageCmd)

	leaderboardCmd.Flags().StringVar(&category, "category", "Trap 1", "Trap to rank (Trap 1, Trap 2, 1, 2)")
	leaderboardCmd.Flags().StringVar(&window, "window", "all", "Time window (all, 7d, 30d)")
	leaderboardCmd.Flags().StringVar(&since, "since", "", "Explicit window start (YYYY-MM-DD), overrides --window")
	leaderboardCmd.Flags().BoolVar(&announce, "announce", false, "Post the leaderboard to Slack (admin)")

	playersCmd.AddCommand(playersListCmd)
	playersCmd.AddCommand(playersAddCmd)
	playersAddCmd.Flags().StringVar(&bulkFile, "file", "", "File with one player name per line")

	eventCmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Event date (YYYY-MM-DD)")
	eventCmd.Flags().StringVar(&category, "category", "Trap 1", "Trap the event was held at")

	damageCmd.AddCommand(damageShowCmd)
	damageCmd.AddCommand(damageSetCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard for a trap",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"category": {category}, "window": {window}}
		if since != "" {
			q.Set("since", since)
		}
		if announce {
			return performRequest(http.MethodPost, "/api/leaderboard/announce?"+q.Encode(), nil)
		}
		return performRequest(http.MethodGet, "/api/leaderboard?"+q.Encode(), nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage the player roster",
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/players", nil)
	},
}

var playersAddCmd = &cobra.Command{
	Use:   "add [name...]",
	Short: "Add players by name or from a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		bulk := strings.Join(args, "\n")
		if bulkFile != "" {
			raw, err := os.ReadFile(bulkFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", bulkFile, err)
			}
			bulk += "\n" + string(raw)
		}
		return performRequest(http.MethodPost, "/api/players", map[string]string{"bulk": bulk})
	},
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Get or create the event for a date and trap",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/events", map[string]string{"date": date, "category": category})
	},
}

var damageCmd = &cobra.Command{
	Use:   "damage",
	Short: "Show or record damage for an event",
}

var damageShowCmd = &cobra.Command{
	Use:   "show EVENT_ID",
	Short: "Show the damage sheet of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/events/"+url.PathEscape(args[0])+"/damage", nil)
	},
}

var damageSetCmd = &cobra.Command{
	Use:   "set EVENT_ID PLAYER_ID=DAMAGE...",
	Short: "Record damage for one or more players",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := parseDamageArgs(args[1:])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPut, "/api/events/"+url.PathEscape(args[0])+"/damage", rows)
	},
}

// parseDamageArgs turns "12=1500" pairs into request rows. The damage is sent as typed.
func parseDamageArgs(args []string) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(args))
	for _, arg := range args {
		player, dmg, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected PLAYER_ID=DAMAGE, got %q", arg)
		}
		playerID, err := strconv.ParseInt(player, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q: %w", player, err)
		}
		rows = append(rows, map[string]any{"player_id": playerID, "damage": dmg})
	}
	return rows, nil
}

func performRequest(method, endpoint string, body any) error {
	target := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminPassword != "" {
		req.Header.Set("X-Admin-Password", adminPassword)
	}
	if useMsgpack {
		req.Header.Set("Accept", "application/msgpack")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(renderBody(resp.Header.Get("Content-Type"), respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

// renderBody pretty-prints JSON and MessagePack bodies and returns anything else unchanged.
func renderBody(contentType string, body []byte) string {
	var v any
	switch {
	case strings.HasPrefix(contentType, "application/msgpack"):
		if err := msgpack.Unmarshal(body, &v); err != nil {
			return fmt.Sprintf("<undecodable msgpack: %s>", err)
		}
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.Unmarshal(body, &v); err != nil {
			return string(body)
		}
	default:
		return string(body)
	}

	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(pretty)
}
