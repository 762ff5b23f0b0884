// Command simulate-call runs one incoming call and one speech turn through the
// pipeline without a telephony provider, printing the markup for each.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/troikatech/care-voice/internal/app"
	"github.com/troikatech/care-voice/pkg/audit"
	"github.com/troikatech/care-voice/pkg/callflow"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/profile/profiletest"
)

func main() {
	from := flag.String("from", "+14155551234", "caller id")
	say := flag.String("say", "", "speech result for the second turn; empty skips it")
	memory := flag.Bool("memory", false, "use an in-memory profile store instead of MongoDB")
	flag.Parse()

	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var (
		store    profile.Store
		recorder audit.Recorder = audit.NopRecorder{}
	)
	if *memory {
		store = profiletest.NewMemStore()
	} else {
		mongoClient, err := mongo.NewClient(cfg.MongoURI, cfg.DBName, logger.Log)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
		store = profile.NewMongoStore(mongoClient)
		recorder = audit.NewMongoRecorder(mongoClient, logger.Log)
	}

	pipeline := app.NewPipeline(cfg, store, recorder, logger.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	turn, err := pipeline.Calls.Start(ctx, *from)
	if err != nil {
		log.Fatalf("Start failed: %v", err)
	}
	printTurn("POST /voice/incoming", turn)

	if *say == "" {
		return
	}

	turn, err = pipeline.Calls.Continue(ctx, *from, *say)
	if err != nil {
		log.Fatalf("Continue failed: %v", err)
	}
	printTurn("POST "+cfg.VoiceContinuePath, turn)
}

func printTurn(title string, turn *callflow.Turn) {
	fmt.Println("========================================")
	fmt.Println(title)
	fmt.Println("========================================")
	fmt.Printf("Resolved by: %s\n", turn.ResolvedBy)
	fmt.Printf("Language:    %s\n", turn.Voice.Language)
	fmt.Printf("Voice:       %s\n", turn.Voice.Voice)
	fmt.Printf("State:       %s\n", turn.State)
	if turn.Reply != "" {
		fmt.Printf("Reply:       %s\n", turn.Reply)
	}
	fmt.Println()
	fmt.Println(turn.Markup)
	fmt.Println()
}
