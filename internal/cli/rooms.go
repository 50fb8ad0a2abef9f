package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/capicuhq/capicu/pkg/rooms"
)

// defaultServerURL is where rooms looks for a local server.
const defaultServerURL = "http://localhost:8080"

// roomsCommand creates the rooms command for browsing live games.
func (c *CLI) roomsCommand() *cobra.Command {
	var (
		serverURL string
		plain     bool
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse live rooms on a running server",
		Long: `Browse live rooms on a running server.

Opens an interactive table of the rooms the server is hosting: variant, phase,
seats, and round. Press r to refresh and enter to print a room's details.
Use --list for plain output suited to scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			if plain {
				return runRoomsList(ctx, serverURL, all)
			}
			return runRoomsBrowser(ctx, serverURL, all)
		},
	}

	cmd.Flags().StringVar(&serverURL, "addr", defaultServerURL, "base URL of the server")
	cmd.Flags().BoolVar(&plain, "list", false, "print a plain listing instead of the interactive view")
	cmd.Flags().BoolVar(&all, "all", false, "include rooms that already started")

	return cmd
}

// fetchRooms lists rooms over the REST API, newest first.
func fetchRooms(ctx context.Context, serverURL string, all bool) ([]rooms.Info, error) {
	url := strings.TrimRight(serverURL, "/") + "/api/games"
	if all {
		url += "?all=1"
	}
	loggerFromContext(ctx).Debug("fetching rooms", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	var infos []rooms.Info
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("decode room list: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos, nil
}

// runRoomsList prints one room per line.
func runRoomsList(ctx context.Context, serverURL string, all bool) error {
	infos, err := fetchRooms(ctx, serverURL, all)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		printInfo("No rooms")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %-5s  %-8s  %d/%d  round %d  %s\n",
			info.ID, info.Variant, info.Status,
			info.PlayerCount, info.MaxPlayers, info.Round,
			strings.Join(info.Players, ", "))
	}
	return nil
}

// runRoomsBrowser opens the interactive table and prints the selection.
func runRoomsBrowser(ctx context.Context, serverURL string, all bool) error {
	p := tea.NewProgram(newRoomListModel(serverURL, all), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	m, ok := final.(roomListModel)
	if !ok || m.selected == nil {
		return nil
	}
	printRoomDetail(*m.selected, serverURL)
	return nil
}

// printRoomDetail prints one room's summary after the browser exits.
func printRoomDetail(info rooms.Info, serverURL string) {
	printKeyValue("Game", info.ID)
	printKeyValue("Variant", string(info.Variant))
	printKeyValue("Phase", string(info.Status))
	printKeyValue("Seats", fmt.Sprintf("%d/%d", info.PlayerCount, info.MaxPlayers))
	if len(info.Players) > 0 {
		printKeyValue("Players", strings.Join(info.Players, ", "))
	}
	printKeyValue("Target", fmt.Sprintf("%d", info.TargetScore))
	printKeyValue("Round", fmt.Sprintf("%d", info.Round))
	printNewline()
	printNextStep("Join", fmt.Sprintf("curl -X POST %s/api/games/%s/join -d '{\"player_name\":\"YOU\"}'",
		strings.TrimRight(serverURL, "/"), info.ID))
}
