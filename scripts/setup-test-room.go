package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Champion struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type Edit struct {
	ChampionID int32  `json:"champion_id"`
	Position   string `json:"position"`
}

type Draft struct {
	BlueChampions [5]*int32 `json:"blue_champions"`
	RedChampions  [5]*int32 `json:"red_champions"`
	BlueBans      [5]*int32 `json:"blue_bans"`
	RedBans       [5]*int32 `json:"red_bans"`
}

// A complete draft in tournament order: alternating bans, then the
// 1-2-2-2-2-1 pick rotation.
var script = []struct {
	Position string
	Champion string
}{
	{"BlueBan1", "Aatrox"},
	{"RedBan1", "Rumble"},
	{"BlueBan2", "Azir"},
	{"RedBan2", "Kalista"},
	{"BlueBan3", "Ashe"},
	{"RedBan3", "Renekton"},
	{"BlueBan4", "Vi"},
	{"RedBan4", "Jayce"},
	{"BlueBan5", "Poppy"},
	{"RedBan5", "Neeko"},
	{"Blue1", "Orianna"},
	{"Red1", "Viktor"},
	{"Red2", "Sejuani"},
	{"Blue2", "Jarvan IV"},
	{"Blue3", "Gnar"},
	{"Red3", "Jax"},
	{"Red4", "Varus"},
	{"Blue4", "Jinx"},
	{"Blue5", "Thresh"},
	{"Red5", "Braum"},
}

func getChampions(serverBase string) (map[string]int32, error) {
	resp, err := http.Get(serverBase + "/champions")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("champions failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var champions []Champion
	if err := json.NewDecoder(resp.Body).Decode(&champions); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	byName := make(map[string]int32, len(champions))
	for _, c := range champions {
		byName[c.Name] = c.ID
	}
	return byName, nil
}

func main() {
	serverBase := "http://localhost:3000"
	if envURL := os.Getenv("SERVER_URL"); envURL != "" {
		serverBase = envURL
	}

	fmt.Println("Setting up test draft room...")
	fmt.Println()

	// Resolve the scripted champion names against the live catalog
	fmt.Println("Fetching champion catalog...")
	byName, err := getChampions(serverBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get champions: %v\n", err)
		os.Exit(1)
	}
	if len(byName) == 0 {
		fmt.Fprintln(os.Stderr, "Champion catalog is empty; wait for the first catalog sync to finish")
		os.Exit(1)
	}
	fmt.Printf("  ✓ %d champions in catalog\n", len(byName))

	for _, step := range script {
		if _, ok := byName[step.Champion]; !ok {
			fmt.Fprintf(os.Stderr, "Champion %q is not in the catalog\n", step.Champion)
			os.Exit(1)
		}
	}

	roomID := uuid.New()
	wsBase := "ws" + strings.TrimPrefix(serverBase, "http")
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/ws/%s", wsBase, roomID), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Play the draft
	fmt.Println("\nPlaying draft...")
	for i, step := range script {
		if err := conn.WriteJSON(Edit{ChampionID: byName[step.Champion], Position: step.Position}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send edit %d: %v\n", i+1, err)
			os.Exit(1)
		}

		// Wait for the echo so edits land in order
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var draft Draft
		if err := conn.ReadJSON(&draft); err != nil {
			fmt.Fprintf(os.Stderr, "No update after edit %d (%s on %s): %v\n", i+1, step.Champion, step.Position, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ %-8s %s\n", step.Position, step.Champion)
	}

	// Output the setup information
	fmt.Println("\n" + "============================================================")
	fmt.Println("TEST ROOM SETUP COMPLETE")
	fmt.Println("============================================================")

	fmt.Println("\nRoom Info:")
	fmt.Printf("  ID:    %s\n", roomID)
	fmt.Printf("  Board: %s/draft/%s\n", serverBase, roomID)
	fmt.Println("\nOpen the board URL, or connect more peers with:")
	fmt.Printf("  simulator watch --room=%s\n", roomID)

	// Output JSON for programmatic use
	output := map[string]interface{}{
		"room": map[string]string{
			"id":  roomID.String(),
			"url": fmt.Sprintf("%s/draft/%s", serverBase, roomID),
		},
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("JSON OUTPUT (for scripts):")
	fmt.Println("============================================================")
	jsonOutput, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonOutput))
}
