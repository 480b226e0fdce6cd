package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garagehub/internal/model"
	"garagehub/internal/service"
)

// Seeds a demo tenant with a default tyre policy for local development.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "garagehub"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo1234"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin1234"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(mongoDB)

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	adminHash, err := service.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	tenant := model.Tenant{
		ID:                primitive.NewObjectID().Hex(),
		Slug:              "demo-garage",
		Name:              "Demo Garage",
		PasswordHash:      hash,
		AdminPasswordHash: adminHash,
		CreatedAt:         time.Now(),
	}

	existing := db.Collection("tenants").FindOne(ctx, bson.M{"slug": tenant.Slug})
	if existing.Err() == nil {
		log.Fatalf("Tenant %q already exists", tenant.Slug)
	}

	if _, err := db.Collection("tenants").InsertOne(ctx, tenant); err != nil {
		log.Fatalf("Failed to insert tenant: %v", err)
	}

	// German TÜV-style defaults: 1.6mm legal minimum, earlier warnings
	// for winter tyres.
	policy := model.TenantTyrePolicy{
		TenantID:                tenant.ID,
		SummerMinTreadMm:        1.6,
		SummerWarningTreadMm:    3.0,
		WinterMinTreadMm:        1.6,
		WinterWarningTreadMm:    4.0,
		AllSeasonMinTreadMm:     1.6,
		AllSeasonWarningTreadMm: 3.5,
		MaxTyreAgeYears:         8,

		NotifyCustomerOnLowTread: true,
		NotifyCustomerOnOldTyres: true,

		UpdatedAt: time.Now(),
	}
	if err := policy.Validate(); err != nil {
		log.Fatalf("Seed policy invalid: %v", err)
	}

	if _, err := db.Collection("tyre_policies").InsertOne(ctx, policy); err != nil {
		log.Fatalf("Failed to insert tyre policy: %v", err)
	}

	log.Printf("Seeded tenant %q (id=%s) with default tyre policy", tenant.Slug, tenant.ID)
	log.Printf("Staff login: slug=%s password=%s", tenant.Slug, password)
	log.Printf("Admin login: slug=%s password=%s", tenant.Slug, adminPassword)
}
