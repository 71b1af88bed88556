package main

import (
	"fmt"
	"log"
	"os"

	"ticketgogo/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: repair | close <ticket_id> | autores on|off | stats")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "repair":
		// Stamps public ids onto rows left half-created by a crash between
		// insert and id update.
		count, err := storageSvc.RepairTicketIDs()
		if err != nil {
			log.Fatalf("Error repairing tickets: %v", err)
		}
		fmt.Printf("Repaired %d orphaned ticket rows.\n", count)

	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <ticket_id>")
			os.Exit(1)
		}
		ticketID := os.Args[2]
		t, err := storageSvc.GetTicket(ticketID)
		if err != nil {
			log.Fatalf("Error loading ticket: %v", err)
		}
		if t == nil {
			log.Fatalf("Ticket %s not found", ticketID)
		}
		if err := storageSvc.CloseTicket(ticketID, nil, nil); err != nil {
			log.Fatalf("Error closing ticket: %v", err)
		}
		fmt.Printf("Ticket %s closed. Group messages were not swept; remove them by hand if needed.\n", ticketID)

	case "autores":
		if len(os.Args) != 3 || (os.Args[2] != "on" && os.Args[2] != "off") {
			fmt.Println("Usage: admin autores on|off")
			os.Exit(1)
		}
		enabled := os.Args[2] == "on"
		if err := storageSvc.SetAutorespondersEnabled(enabled); err != nil {
			log.Fatalf("Error updating autoresponder switch: %v", err)
		}
		fmt.Printf("Autoresponders switched %s.\n", os.Args[2])

	case "stats":
		stats, err := storageSvc.ClosureStats()
		if err != nil {
			log.Fatalf("Error loading stats: %v", err)
		}
		if len(stats) == 0 {
			fmt.Println("No closed tickets yet.")
			return
		}
		for _, st := range stats {
			fmt.Printf("%s\t%d\n", st.Who, st.Count)
		}

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
