package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/engine"
)

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTextMatches(res []engine.TextMatch) {
	if len(res) == 0 {
		fmt.Println("No phones matched")
		return
	}
	for i, m := range res {
		fmt.Printf("%d. %s %s  Rs.%d  rating %.1f  similarity %.3f\n", i+1, m.Brand, m.Model, m.Price, m.Rating, m.SimilarityScore)
		fmt.Printf("   %s | best for: %s\n", m.Processor, m.BestFor)
	}
}

func printSpecMatches(res []engine.SpecMatch) {
	if len(res) == 0 {
		fmt.Println("No phones matched")
		return
	}
	for i, m := range res {
		fmt.Printf("%d. %s %s  Rs.%d  rating %.1f\n", i+1, m.Brand, m.Model, m.Price, m.Rating)
		fmt.Printf("   %s | best for: %s\n", m.Processor, m.BestFor)
		if m.Reason != "" {
			fmt.Printf("   %s\n", m.Reason)
		}
	}
}

func printStats(st catalog.Stats) {
	fmt.Printf("Phones:      %d\n", st.TotalPhones)
	fmt.Printf("Brands:      %v\n", st.Brands)
	fmt.Printf("Price range: Rs.%d - Rs.%d (avg Rs.%d)\n", st.PriceRange.Min, st.PriceRange.Max, st.PriceRange.Avg)
	fmt.Printf("Use cases:   %v\n", st.UseCases)
}
