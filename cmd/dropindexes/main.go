// Command dropindexes removes every non-default index from the store.
// Run it after changing schema index definitions so the API can rebuild
// them cleanly on next start.
package main

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DRafi2006/FOUND/config"
)

func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Connecting to MongoDB at %s", cfg.MongoURI)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	db := client.Database(databaseName(cfg.MongoURI))
	log.Printf("Connected to DB: %s", db.Name())

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		log.Fatalf("Failed to list collections: %v", err)
	}
	if len(names) == 0 {
		log.Println("No collections found in database")
	}

	for _, name := range names {
		log.Printf("Collection: %s", name)

		coll := db.Collection(name)
		cursor, err := coll.Indexes().List(ctx)
		if err != nil {
			log.Fatalf("Failed to list indexes for %s: %v", name, err)
		}

		var indexes []bson.M
		if err := cursor.All(ctx, &indexes); err != nil {
			log.Fatalf("Failed to read indexes for %s: %v", name, err)
		}

		for _, index := range indexes {
			indexName, _ := index["name"].(string)
			if indexName == "" || indexName == "_id_" {
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, indexName); err != nil {
				log.Fatalf("Failed to drop index %s on %s: %v", indexName, name, err)
			}
			log.Printf("Dropped index %s", indexName)
		}
	}

	log.Println("DONE: All old indexes removed")
}

// databaseName extracts the database from the connection URI, falling
// back to the app default.
func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "found"
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "found"
	}
	return name
}
