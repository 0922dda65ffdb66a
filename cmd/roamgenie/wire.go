package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"roamgenie/internal/ai"
	"roamgenie/internal/config"
	"roamgenie/internal/infra"
	"roamgenie/internal/maps"
	"roamgenie/internal/modules/emergency"
	"roamgenie/internal/modules/flights"
	"roamgenie/internal/modules/passport"
	"roamgenie/internal/modules/scanner"
	"roamgenie/internal/modules/warroom"
	"roamgenie/internal/notify"
	"roamgenie/internal/service"
)

// app holds every wired service plus the resources main must release.
type app struct {
	cfg       config.Config
	redis     *redis.Client
	providers *ai.Providers

	scanner   *scanner.Service
	warroom   *warroom.Service
	passport  *passport.Service
	planner   *service.TripPlanner
	emergency *emergency.Service
}

func (a *app) Close() {
	if a.providers != nil {
		a.providers.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// buildApp wires the services from cfg. Optional integrations that fail to
// initialise are logged and left out; only the AI provider is mandatory.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	rdb, err := infra.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Printf("WARNING: redis unavailable, continuing without it: %v", err)
	}
	a.redis = rdb

	providers, err := ai.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ai provider: %w", err)
	}
	a.providers = providers
	log.Printf("AI provider: %s (vision enabled: %t)", cfg.AI.Provider, providers.Vision != nil)

	sender, caller := buildNotify(ctx, cfg)

	var transfer scanner.TransferEstimator
	var places service.PlacesFinder
	if cfg.Maps.APIKey != "" {
		if routes, err := maps.NewRouteService(cfg.Maps.APIKey); err != nil {
			log.Printf("WARNING: maps routes disabled: %v", err)
		} else {
			transfer = routes
		}
		if ps, err := maps.NewPlacesService(cfg.Maps.APIKey); err != nil {
			log.Printf("WARNING: maps places disabled: %v", err)
		} else {
			places = ps
		}
	}

	dataset := passport.NewDataset(cfg.Passport.DatasetURLs, rdb, cfg.Passport.CacheTTL)
	var visas service.VisaChecker = dataset

	a.scanner = scanner.NewService(providers.Generator, providers.Vision, transfer, sender)
	a.warroom = warroom.NewService(
		warroom.NewAviationStack(cfg.WarRoom.AviationStackKey),
		warroom.NewSerpAdvisories(cfg.WarRoom.SerpAPIKey),
		providers.Generator,
		sender,
	)
	a.passport = passport.NewService(dataset, providers.Vision)
	a.planner = service.NewTripPlanner(providers.Generator, flights.NewClient(cfg.WarRoom.SerpAPIKey), places, visas)
	a.emergency = emergency.NewService(sender, caller, cfg.IVR.WebhookURL)
	return a, nil
}

// buildNotify returns the message dispatcher and, when Twilio is configured, the voice caller.
func buildNotify(ctx context.Context, cfg config.Config) (notify.Sender, emergency.Caller) {
	var whatsapp, push notify.Sender
	var caller emergency.Caller

	if tw := notify.NewTwilio(cfg.Twilio); tw != nil {
		whatsapp = tw
		caller = tw
	} else {
		log.Printf("WARNING: Twilio credentials not set, WhatsApp and voice are disabled")
	}

	if cfg.Firebase.ProjectID != "" {
		fb, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Printf("WARNING: firebase init: %v", err)
		} else if fcm, err := notify.NewFCM(ctx, fb); err != nil {
			log.Printf("WARNING: %v", err)
		} else {
			push = fcm
		}
	}

	return notify.NewDispatcher(whatsapp, push), caller
}
