package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	serverURL := "http://localhost:3000"
	if envURL := os.Getenv("SERVER_URL"); envURL != "" {
		serverURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "watch":
		watchCmd(serverURL, args)
	case "edit":
		editCmd(serverURL, args)
	case "fill":
		fillCmd(serverURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Draft Simulator - Development tool for driving draft rooms

USAGE:
  simulator <command> [options]

COMMANDS:
  watch   Connect to a room and print every board update
  edit    Apply a single edit to a room
  fill    Play out a full 20-slot draft with random champions
  help    Show this help message

ENVIRONMENT:
  SERVER_URL   Backend URL (default: http://localhost:3000)

EXAMPLES:
  # Follow a room from another terminal
  simulator watch --room=7c9e6679-7425-40de-944b-e07fc1f90ae7

  # Put champion 266 on the first blue pick slot
  simulator edit --room=7c9e6679-7425-40de-944b-e07fc1f90ae7 --champion=266 --position=Blue1

  # Create a fresh room and fill all 20 slots
  simulator fill

  # Fill an existing room with half a second between edits
  simulator fill --room=7c9e6679-7425-40de-944b-e07fc1f90ae7 --delay=500ms`)
}

// boardPositions is every slot tag the server accepts, in the order fill
// plays them: ban phase first, then picks.
var boardPositions = []string{
	"BlueBan1", "BlueBan2", "BlueBan3", "BlueBan4", "BlueBan5",
	"RedBan1", "RedBan2", "RedBan3", "RedBan4", "RedBan5",
	"Blue1", "Blue2", "Blue3", "Blue4", "Blue5",
	"Red1", "Red2", "Red3", "Red4", "Red5",
}

func watchCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	room := fs.String("room", "", "Room UUID (required)")
	fs.Parse(args)

	roomID := mustRoomID(*room)
	client := NewDraftClient(serverURL)

	draft, err := client.GetDraft(roomID)
	if err != nil {
		fmt.Printf("Failed to get draft: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Watching room %s\n\n", roomID)
	printDraft(draft)

	conn, err := client.Connect(roomID)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	for {
		draft, err := conn.ReadDraft()
		if err != nil {
			fmt.Printf("\nConnection closed: %v\n", err)
			return
		}
		fmt.Println()
		printDraft(draft)
	}
}

func editCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	room := fs.String("room", "", "Room UUID (required)")
	champion := fs.Int("champion", 0, "Champion id to place (required)")
	position := fs.String("position", "", "Board slot, e.g. Blue1 or RedBan3 (required)")
	fs.Parse(args)

	roomID := mustRoomID(*room)
	if !validPosition(*position) {
		fmt.Printf("Error: %q is not a board position\n", *position)
		os.Exit(1)
	}

	client := NewDraftClient(serverURL)
	conn, err := client.Connect(roomID)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := conn.SendEdit(int32(*champion), *position); err != nil {
		fmt.Printf("Failed to send edit: %v\n", err)
		os.Exit(1)
	}

	// Applied edits are broadcast back to every peer, including this one.
	draft, err := conn.ReadDraftTimeout(2 * time.Second)
	if err != nil {
		fmt.Printf("No board update received: %v\n", err)
		fmt.Println("The edit may name a champion outside the catalog.")
		os.Exit(1)
	}
	printDraft(draft)
}

func fillCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	room := fs.String("room", "", "Room UUID (default: create a fresh room)")
	delay := fs.Duration("delay", 200*time.Millisecond, "Pause between edits")
	fs.Parse(args)

	roomID := uuid.New()
	if *room != "" {
		roomID = mustRoomID(*room)
	}

	client := NewDraftClient(serverURL)

	fmt.Print("Fetching champion catalog... ")
	champions, err := client.GetChampions()
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	if len(champions) < len(boardPositions) {
		fmt.Printf("FAILED\n  Error: catalog has %d champions, need at least %d\n", len(champions), len(boardPositions))
		os.Exit(1)
	}
	fmt.Printf("OK (%d champions)\n", len(champions))

	conn, err := client.Connect(roomID)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Filling room %s:\n", roomID)

	var draft *Draft
	order := rand.Perm(len(champions))
	for i, position := range boardPositions {
		champion := champions[order[i]]
		if err := conn.SendEdit(champion.ID, position); err != nil {
			fmt.Printf("  [%d/%d] FAILED to send: %v\n", i+1, len(boardPositions), err)
			os.Exit(1)
		}
		draft, err = conn.ReadDraftTimeout(5 * time.Second)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED waiting for update: %v\n", i+1, len(boardPositions), err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s -> %s\n", i+1, len(boardPositions), champion.Name, position)
		time.Sleep(*delay)
	}

	fmt.Println()
	printDraft(draft)
	fmt.Println()
	fmt.Printf("Done! View the draft at: %s/draft/%s\n", serverURL, roomID)
}

func mustRoomID(raw string) uuid.UUID {
	if raw == "" {
		fmt.Println("Error: --room is required")
		os.Exit(1)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fmt.Printf("Error: %q is not a UUID\n", raw)
		os.Exit(1)
	}
	return id
}

func validPosition(position string) bool {
	for _, p := range boardPositions {
		if p == position {
			return true
		}
	}
	return false
}

func printDraft(d *Draft) {
	fmt.Println("         Blue    Red")
	for i := 0; i < 5; i++ {
		fmt.Printf("  Ban%d   %-6s  %-6s\n", i+1, slot(d.BlueBans[i]), slot(d.RedBans[i]))
	}
	for i := 0; i < 5; i++ {
		fmt.Printf("  Pick%d  %-6s  %-6s\n", i+1, slot(d.BlueChampions[i]), slot(d.RedChampions[i]))
	}
}

func slot(id *int32) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
