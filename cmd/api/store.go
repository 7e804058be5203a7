package main

import (
	"context"
	"log"

	config "github.com/smarifurrahman/linguistic-horizons-server/configs"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/database/memory"
	"github.com/smarifurrahman/linguistic-horizons-server/database/mongodb"
	"github.com/smarifurrahman/linguistic-horizons-server/database/postgres"
)

func openStore(ctx context.Context, s *config.Settings) (database.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, s.DBTimeout)
	defer cancel()

	switch s.DBDriver {
	case "postgres":
		return postgres.Connect(s.PostgresDSN)
	case "memory":
		log.Println("⚠️ Using the in-memory store; data is lost on exit.")
		return memory.New(), nil
	default:
		return mongodb.Connect(ctx, s.MongoURI, s.DBName)
	}
}
