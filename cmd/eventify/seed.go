package main

import (
	"errors"
	"fmt"
	"time"

	"eventify/internal/models"
	"eventify/internal/repositories"
	"eventify/internal/services"

	"github.com/spf13/cobra"
)

type sampleEvent struct {
	title       string
	description string
	location    string
	inDays      int
	hour        int
	capacity    int
}

var sampleEvents = []sampleEvent{
	{"Jazz Night", "Une soirée de jazz live avec le quartet maison.", "Paris", 7, 20, 120},
	{"Festival Électro", "Deux scènes et dix artistes jusqu'au bout de la nuit.", "Lyon", 14, 18, 800},
	{"Conférence Go", "Talks et ateliers autour de l'écosystème Go.", "Nantes", 21, 9, 250},
	{"Marché de Noël", "Artisans locaux et vin chaud sur la place.", "Strasbourg", 45, 10, 2000},
	{"Atelier Poterie", "Initiation au tour pour débutants, matériel fourni.", "Bordeaux", 3, 14, 12},
	{"Soirée Stand-up", "Cinq humoristes, un micro, zéro filet.", "Marseille", 10, 21, 90},
}

func newSeedCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample upcoming events for an existing organizer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			organizer, err := repositories.NewUserRepository(db.DB).GetByEmail(ctx, models.NormalizeEmail(email))
			if err != nil {
				if errors.Is(err, models.ErrUserNotFound) {
					return fmt.Errorf("no organizer with email %s, run create-organizer first", email)
				}
				return err
			}

			eventService := services.NewEventService(repositories.NewEventRepository(db.DB), services.EventServiceOptions{
				HideExistence: cfg.Auth.OwnershipHideExistence,
			}, logger)

			today := time.Now().UTC().Truncate(24 * time.Hour)
			for _, sample := range sampleEvents {
				date := today.AddDate(0, 0, sample.inDays).Add(time.Duration(sample.hour) * time.Hour)
				event, err := eventService.Create(ctx, organizer.ID, &models.EventInput{
					Title:       sample.title,
					Description: sample.description,
					Location:    sample.location,
					Date:        date.Format(time.RFC3339),
					Capacity:    models.IntValue(sample.capacity),
				})
				if err != nil {
					return fmt.Errorf("failed to create %q: %w", sample.title, err)
				}
				fmt.Printf("Created event %d: %s (%s, %s)\n", event.ID, event.Title, event.Location, event.Date.Format("02/01/2006 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "organizer", "", "email of the organizer who owns the events")
	_ = cmd.MarkFlagRequired("organizer")
	return cmd
}
