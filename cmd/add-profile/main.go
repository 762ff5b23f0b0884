package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/troikatech/care-voice/internal/app"
	"github.com/troikatech/care-voice/pkg/audit"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/utils"
)

func main() {
	phone := flag.String("phone", "", "caller id: E.164 number, client or SIP identity")
	name := flag.String("name", "", "display name")
	gender := flag.String("gender", "", "male, female or neutral")
	language := flag.String("language", "", "language tag, e.g. hi-IN")
	flag.Parse()

	if *phone == "" {
		log.Fatal("-phone is required")
	}
	if !utils.ValidCallerID(*phone) {
		log.Fatalf("Invalid phone %q: expected e.g. +919876543210 or client:alice", *phone)
	}

	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	mongoClient, err := mongo.NewClient(cfg.MongoURI, cfg.DBName, logger.Log)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("Failed to disconnect MongoDB: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := profile.NewMongoStore(mongoClient)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	svc := profile.NewService(store, app.Defaults(cfg), audit.NewMongoRecorder(mongoClient, logger.Log), logger.Log)

	var g *profile.Gender
	if *gender != "" {
		parsed, ok := profile.ParseGender(*gender)
		if !ok {
			log.Fatalf("Invalid gender %q: must be male, female or neutral", *gender)
		}
		g = &parsed
	}
	var lang *string
	if *language != "" {
		normalized := utils.NormalizeLanguageTag(*language)
		lang = &normalized
	}
	var n *string
	if *name != "" {
		n = name
	}

	fmt.Println("========================================")
	fmt.Println("Adding Caller Profile")
	fmt.Println("========================================")
	fmt.Println()

	p, err := svc.Create(ctx, profile.CreateInput{PhoneNumber: *phone, Name: n, Gender: g, LanguageCode: lang})
	if errors.Is(err, profile.ErrConflict) {
		existing, ferr := svc.GetByPhone(ctx, *phone)
		if ferr != nil {
			log.Fatalf("Failed to load existing profile: %v", ferr)
		}
		fmt.Printf("✅ Found existing profile: %s\n", existing.ID)
		p, err = svc.Update(ctx, existing.ID, profile.UpdateInput{Name: n, Gender: g, LanguageCode: lang})
		if err != nil {
			log.Fatalf("Failed to update profile: %v", err)
		}
		fmt.Println("✅ Profile updated")
	} else if err != nil {
		log.Fatalf("Failed to create profile: %v", err)
	} else {
		fmt.Println("✅ Profile created")
	}

	fmt.Println()
	fmt.Printf("ID:       %s\n", p.ID)
	fmt.Printf("Phone:    %s\n", p.PhoneNumber)
	fmt.Printf("Name:     %s\n", p.DisplayName())
	fmt.Printf("Gender:   %s\n", p.Gender)
	fmt.Printf("Language: %s\n", p.LanguageCode)
}
