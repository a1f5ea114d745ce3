// schema-generator writes the JSON Schema for places.yml so editors can
// validate config files.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/places/config"
)

func main() {
	out := flag.String("o", "schema/places.schema.json", "output file")
	flag.Parse()

	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}
	if err := os.WriteFile(*out, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", *out)
}
