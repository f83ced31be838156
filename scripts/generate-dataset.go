//go:build ignore

// Package main generates a synthetic dataset for profiling fzsearch.
// Usage: go run scripts/generate-dataset.go -records 10000 -output testdata/bench/books.json
//
// The extension of -output picks the format: .json, .yaml or anything else
// for one title per line. Titles come from a fixed vocabulary so queries such
// as "distributd systms" have realistic near misses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	numRecords = flag.Int("records", 10000, "Number of records to generate")
	outputPath = flag.String("output", "testdata/bench/books.json", "Output file")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var (
	adjectives = []string{"Practical", "Modern", "Pragmatic", "Effective", "Concurrent", "Distributed", "Clean", "Secure", "Reactive", "Functional"}
	subjects   = []string{"Go", "Systems", "Networks", "Databases", "Algorithms", "Compilers", "Testing", "Design", "Observability", "Cryptography"}
	suffixes   = []string{"in Action", "from Scratch", "Patterns", "Explained", "Handbook", "Cookbook", "Fundamentals", "at Scale"}
	firstNames = []string{"Alan", "William", "Rob", "Katherine", "Martin", "Andrew", "Grace", "Barbara", "Donald", "Frances"}
	lastNames  = []string{"Donovan", "Kennedy", "Pike", "Cox-Buday", "Kleppmann", "Hunt", "Hopper", "Liskov", "Knuth", "Allen"}
	tags       = []string{"go", "backend", "architecture", "performance", "security", "testing", "data", "networking"}
)

// book is one generated record. Field order is the order written.
type book struct {
	Title  string   `json:"title" yaml:"title"`
	Author author   `json:"author" yaml:"author"`
	Year   int      `json:"year" yaml:"year"`
	Tags   []string `json:"tags" yaml:"tags"`
}

type author struct {
	Name string `json:"name" yaml:"name"`
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.Intn(len(words))]
}

func generate(rng *rand.Rand, n int) []book {
	books := make([]book, n)
	for i := range books {
		bookTags := make([]string, 1+rng.Intn(3))
		for j := range bookTags {
			bookTags[j] = pick(rng, tags)
		}
		books[i] = book{
			Title:  strings.Join([]string{pick(rng, adjectives), pick(rng, subjects), pick(rng, suffixes)}, " "),
			Author: author{Name: pick(rng, firstNames) + " " + pick(rng, lastNames)},
			Year:   1970 + rng.Intn(56),
			Tags:   bookTags,
		}
	}
	return books
}

func encode(books []book, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.MarshalIndent(books, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(books)
	default:
		var sb strings.Builder
		for _, b := range books {
			sb.WriteString(b.Title)
			sb.WriteString("\n")
		}
		return []byte(sb.String()), nil
	}
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	data, err := encode(generate(rng, *numRecords), *outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding dataset: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d records in %s\n", *numRecords, *outputPath)
	fmt.Printf("Try: fzsearch search --data %s --keys title,author.name --profile-cpu cpu.out \"distributd systms\"\n", *outputPath)
}
