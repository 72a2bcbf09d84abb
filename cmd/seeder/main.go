package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vinkenoogm/ks-bear/internal/config"
	"github.com/vinkenoogm/ks-bear/internal/database"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

const (
	numPlayers = 40
	numDays    = 60
	// Chance that a player shows up to a given event.
	attendanceChance = 0.7
	maxDamage        = 25_000_000
)

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DatabaseURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.", "dialect", db.Dialect)

	ctx := context.Background()
	store := tracker.New(db)

	names := make([]string, 0, numPlayers)
	for i := range numPlayers {
		names = append(names, fmt.Sprintf("Seeder Player %02d", i+1))
	}
	if _, err := store.AddPlayers(ctx, "", strings.Join(names, "\n")); err != nil {
		log.Fatalf("Failed to insert seed players: %s", err)
	}
	players, err := store.ListPlayers(ctx)
	if err != nil {
		log.Fatalf("Failed to list players: %s", err)
	}
	log.Info("Ensured seed players exist.", "roster", len(players))

	startTime := time.Now()
	today := tracker.DateOf(time.Now())
	rows := 0
	for day := range numDays {
		date := today.AddDays(-day)
		for _, category := range tracker.Categories() {
			eventID, err := store.GetOrCreateEvent(ctx, date, category)
			if err != nil {
				log.Fatalf("Failed to create event for %s %s: %s", date, category, err)
			}

			batch := make([]tracker.DamageRow, 0, len(players))
			for _, p := range players {
				var dmg int64
				if rand.Float64() < attendanceChance {
					dmg = rand.Int63n(maxDamage) + 1
				}
				batch = append(batch, tracker.DamageRow{PlayerID: p.ID, Damage: dmg})
			}
			if _, err := store.SaveDamage(ctx, eventID, batch); err != nil {
				log.Fatalf("Failed to save damage for event %d: %s", eventID, err)
			}
			rows += len(batch)
		}
	}

	log.Info("Seeding complete.", "events", numDays*len(tracker.Categories()), "damage_rows", rows, "duration", time.Since(startTime))
}
