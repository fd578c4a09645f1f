// Command attribute_post runs the post-attribution heuristic for a single
// post outside the HTTP surface, for backfills and manual investigation.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"social-graph-atlas/internal/attribution"
	"social-graph-atlas/internal/config"
	"social-graph-atlas/internal/store"
)

func main() {
	var (
		postID        string
		timeframeDays int
		rebuild       bool
	)
	flag.StringVar(&postID, "post", "", "post id to attribute (required)")
	flag.IntVar(&timeframeDays, "timeframe-days", 30, "timeframe window in days")
	flag.BoolVar(&rebuild, "rebuild", false, "discard and recompute an existing attribution")
	flag.Parse()

	if postID == "" {
		log.Fatal("-post is required")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer st.Close()

	attributor := attribution.New(st, cfg)

	result, err := attributor.Attribute(context.Background(), postID, timeframeDays, rebuild)
	if err != nil {
		log.Fatalf("attribute post: %v", err)
	}

	var pretty json.RawMessage = result.Payload
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
