package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"tractionservice/database"
	"tractionservice/handlers"
	repository "tractionservice/repositories"
	routes "tractionservice/routes"
	services "tractionservice/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := godotenv.Load(); err != nil {
		log.Fatal().Err(err).Msg("Error loading .env file")
	}

	// Get MongoDB credentials from environment variables
	username := os.Getenv("MONGO_USERNAME")
	password := os.Getenv("MONGO_PASSWORD")
	cluster := os.Getenv("MONGO_CLUSTER")
	appName := os.Getenv("MONGO_APP_NAME")
	jwtSecret := os.Getenv("JWT_SECRET")

	if username == "" || password == "" || cluster == "" || appName == "" {
		log.Fatal().Msg("Missing required environment variables")
	}

	// Build MongoDB Atlas connection string
	uri := fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		username, password, cluster, appName)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}
	log.Info().Msg("Connected to MongoDB Atlas")

	// Multi-document transactions need a replica set; the primary-link,
	// owner-propagation and cascade-delete flows depend on them.
	if !checkIfReplicaSet(client) {
		log.Warn().Msg("Not part of a replica set; transactional flows will fail")
	}

	db := client.Database("traction_service")

	log.Info().Msg("Creating database indexes")
	if err := database.CreateIndexes(db); err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes")
	}

	logger := log.Logger

	measureRepo := repository.NewMeasureRepository(db)
	linkRepo := repository.NewMeasureLinkRepository(db)
	dataRepo := repository.NewMeasureDataRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	refsRepo := repository.NewRefsRepository(db)
	txnRunner := repository.NewTxnRunner(client)

	measureService := services.NewMeasureService(measureRepo, linkRepo, dataRepo, catalogRepo, txnRunner, logger)
	linkService := services.NewMeasureLinkService(linkRepo, measureRepo, dataRepo, refsRepo, txnRunner, logger)
	dataService := services.NewMeasureDataService(dataRepo, measureRepo, logger)

	measureHandler := handlers.NewMeasureHandler(measureService)
	linkHandler := handlers.NewMeasureLinkHandler(linkService)
	dataHandler := handlers.NewMeasureDataHandler(dataService)

	mux := routes.SetupRoutes(measureHandler, linkHandler, dataHandler, jwtSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func checkIfReplicaSet(client *mongo.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result bson.M
	// Use the newer "hello" command instead of deprecated "isMaster"
	err := client.Database("admin").RunCommand(ctx, bson.M{"hello": 1}).Decode(&result)
	if err != nil {
		log.Warn().Err(err).Msg("Error checking replica set")
		return false
	}

	if setName, exists := result["setName"]; exists {
		log.Info().Interface("set_name", setName).Msg("Part of replica set")
		return true
	}

	return false
}
