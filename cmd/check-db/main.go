package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/profile"
)

const phoneIndex = "phone_number_unique"

func main() {
	fmt.Println("========================================")
	fmt.Println("Database Connection Diagnostic Tool")
	fmt.Println("========================================")
	fmt.Println()

	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("MongoDB URI: %s\n", maskURL(cfg.MongoURI))
	fmt.Printf("Database Name: %s\n", cfg.DBName)
	fmt.Println()

	client, err := mongo.NewClient(cfg.MongoURI, cfg.DBName, logger.Log)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		fmt.Println()
		fmt.Println("SOLUTION:")
		fmt.Println("  Ensure MongoDB is running and accessible")
		fmt.Println("  Check MONGO_URI and DB_NAME in .env file")
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Test 1: Pinging MongoDB...")
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ SUCCESS: MongoDB is reachable")
	fmt.Println()

	fmt.Println("Test 2: Counting documents...")
	for _, collection := range []string{profile.Collection, "audit_log"} {
		n, err := client.NewQuery(collection).Count(ctx)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", collection, err)
			continue
		}
		fmt.Printf("✅ %s: %d documents\n", collection, n)
	}
	fmt.Println()

	fmt.Printf("Test 3: Checking %s index on %s...\n", phoneIndex, profile.Collection)
	ok, err := client.HasIndex(ctx, profile.Collection, phoneIndex)
	switch {
	case err != nil:
		fmt.Printf("❌ ERROR: %v\n", err)
		os.Exit(1)
	case !ok:
		fmt.Println("========================================")
		fmt.Println("⚠️  Unique phone index is missing")
		fmt.Println("========================================")
		fmt.Println()
		fmt.Println("The server creates it on startup. Start the server once, or")
		fmt.Println("remove duplicate phone_number documents if index creation failed.")
		os.Exit(1)
	}

	fmt.Println("========================================")
	fmt.Println("✅ All checks passed!")
	fmt.Println("========================================")
}

func maskURL(url string) string {
	if len(url) < 20 {
		return url
	}
	return url[:20] + "..."
}
