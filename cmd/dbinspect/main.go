// Package main prints a summary of a Simmer database: recipe counts, tag usage
// and the most liked recipes.
//
// Usage:
//
//	DATA_PATH=~/Simmer/data go run ./cmd/dbinspect
package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/simmerapp/simmer-server/internal/store/sqlite"
)

const topRecipes = 5

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Simmer/data")
	}
	dbPath := filepath.Join(dataPath, "simmer.db")
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("No database at %s: %v", dbPath, err)
	}

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	total, err := st.CountRecipes(ctx)
	if err != nil {
		log.Fatalf("Failed to count recipes: %v", err)
	}
	published, err := st.ListAllPublishedRecipes(ctx)
	if err != nil {
		log.Fatalf("Failed to list published recipes: %v", err)
	}

	tags, err := st.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}
	usage := make(map[string]int, len(tags))
	for recipe, err := range st.StreamPublishedRecipes(ctx) {
		if err != nil {
			log.Fatalf("Error iterating recipes: %v", err)
		}
		recipeTags, err := st.GetTagsForRecipe(ctx, recipe.ID)
		if err != nil {
			log.Printf("Error reading tags for %s: %v", recipe.ID, err)
			continue
		}
		for _, t := range recipeTags {
			usage[t.Name]++
		}
	}

	fmt.Println("Tags on published recipes:")
	for _, t := range tags {
		fmt.Printf("  %-24s %d\n", t.Name, usage[t.Name])
	}
	fmt.Println()

	type liked struct {
		title string
		likes int
	}
	ranked := make([]liked, 0, len(published))
	for _, r := range published {
		count, err := st.CountLikes(ctx, r.ID)
		if err != nil {
			log.Printf("Error counting likes for %s: %v", r.ID, err)
			continue
		}
		ranked = append(ranked, liked{title: r.Title, likes: count})
	}
	slices.SortStableFunc(ranked, func(a, b liked) int { return cmp.Compare(b.likes, a.likes) })

	fmt.Println("Most liked:")
	for _, r := range ranked[:min(topRecipes, len(ranked))] {
		fmt.Printf("  %-32s %d\n", r.title, r.likes)
	}
	fmt.Println()

	fmt.Println("=== Summary ===")
	fmt.Printf("Total recipes: %d\n", total)
	fmt.Printf("Published: %d\n", len(published))
	fmt.Printf("Drafts: %d\n", total-len(published))
	fmt.Printf("Tags: %d\n", len(tags))
}
