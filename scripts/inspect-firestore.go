//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func main() {
	projectID := flag.String("project", "church-map", "GCP project ID")
	collection := flag.String("collection", "states", "Firestore collection name")
	region := flag.String("region", "", "Filter by region (optional)")
	limit := flag.Int("limit", 10, "Max documents to return (0 for all)")
	countOnly := flag.Bool("count", false, "Only show counts per region")
	flag.Parse()

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	coll := client.Collection(*collection)

	if *countOnly {
		showCounts(ctx, coll)
		return
	}

	query := coll.OrderBy("position", firestore.Asc)
	if *region != "" {
		query = coll.Where("region", "==", *region).OrderBy("position", firestore.Asc)
	}
	if *limit > 0 {
		query = query.Limit(*limit)
	}

	iter := query.Documents(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		jsonData, _ := json.MarshalIndent(doc.Data(), "", "  ")
		fmt.Printf("--- Document: %s ---\n%s\n\n", doc.Ref.ID, string(jsonData))
		count++
	}

	fmt.Printf("Total documents shown: %d\n", count)
}

func showCounts(ctx context.Context, coll *firestore.CollectionRef) {
	counts := make(map[string]int)
	churches := 0
	total := 0

	iter := coll.Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		data := doc.Data()
		region, _ := data["region"].(string)
		counts[region]++
		if list, ok := data["churches"].([]interface{}); ok && len(list) > 0 {
			churches += len(list)
		} else {
			churches++
		}
		total++
	}

	fmt.Println("States per region:")
	fmt.Println("--------------------")
	for region, count := range counts {
		if region == "" {
			region = "(none)"
		}
		fmt.Printf("%-45s %d\n", region, count)
	}
	fmt.Println("--------------------")
	fmt.Printf("%-45s %d\n", "TOTAL STATES", total)
	fmt.Printf("%-45s %d\n", "TOTAL CHURCHES", churches)
}
