// Command catalog-gen writes and checks model catalog override files, the
// JSON document the server loads from CATALOG_CONFIG_KEY at startup.
//
// Usage:
//
//	go run ./cmd/catalog-gen                              # write the built-in table as overrides
//	go run ./cmd/catalog-gen -check config/model_catalog.json
//	go run ./cmd/catalog-gen -upload                      # also put it in the configured bucket
//
// Every model in the written file carries all of its fields, so the file can
// be edited in place to change prices or ratings without a rebuild.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/storage"
)

var (
	output   = flag.String("output", "config/model_catalog.json", "Output file")
	check    = flag.String("check", "", "Validate an existing overrides file and exit")
	balanced = flag.String("balanced", aimodel.DefaultBalancedModel, "Balanced model key")
	upload   = flag.Bool("upload", false, "Upload the file to STORAGE_BUCKET at CATALOG_CONFIG_KEY")
)

func main() {
	flag.Parse()

	if *check != "" {
		catalog, err := checkFile(*check)
		if err != nil {
			log.Fatalf("%s: %v", *check, err)
		}
		log.Printf("%s: ok (%d models, balanced=%s)", *check, catalog.Len(), catalog.ForRole(aimodel.RoleBalanced).Key)
		return
	}

	file := overridesFor(aimodel.DefaultModelSpecs(), *balanced)
	if _, err := file.Apply(aimodel.DefaultModelSpecs(), ""); err != nil {
		log.Fatalf("generated catalog is invalid: %v", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal catalog: %v", err)
	}
	if err := writeFile(*output, data); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
	log.Printf("Generated %s (%d models)", *output, len(file.Models))

	if *upload {
		if err := uploadFile(data); err != nil {
			log.Fatalf("upload failed: %v", err)
		}
	}
}

// overridesFor expresses every spec as a full override.
func overridesFor(specs []aimodel.ModelSpec, balancedKey string) aimodel.CatalogFile {
	file := aimodel.CatalogFile{
		BalancedModel: balancedKey,
		Models:        make(map[string]aimodel.ModelOverride, len(specs)),
	}
	for _, m := range specs {
		file.Models[m.Key] = aimodel.ModelOverride{
			ProviderModelID: &m.ProviderModelID,
			Cost:            &m.Cost,
			SpeedSeconds:    &m.SpeedSeconds,
			Quality:         &m.Quality,
			TextRendering:   &m.TextRendering,
			Photorealism:    &m.Photorealism,
			StyleControl:    &m.StyleControl,
			BestForStyles:   m.BestForStyles,
		}
	}
	return file
}

func checkFile(path string) (*aimodel.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var file aimodel.CatalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return file.Apply(aimodel.DefaultModelSpecs(), "")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func uploadFile(data []byte) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.StorageEnabled || cfg.CatalogConfigKey == "" {
		return fmt.Errorf("storage and CATALOG_CONFIG_KEY must be configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx, storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Region:    cfg.StorageRegion,
	})
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.StorageBucket),
		Key:         aws.String(cfg.CatalogConfigKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return err
	}
	log.Printf("Uploaded s3://%s/%s", cfg.StorageBucket, cfg.CatalogConfigKey)
	return nil
}
