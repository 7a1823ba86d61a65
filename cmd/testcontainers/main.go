package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/backoffice-propsdb/internal/containers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withMongo bool
	flag.BoolVar(&withMongo, "mongo", false, "also start MongoDB for DOCUMENT_STORE=mongodb")
	flag.Parse()

	usage := `
Run the backoffice-propsdb backing services in Docker and print the server
environment that points at them.

Usage:

testcontainers [-h] [-mongo] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to a .env file supplying DB_IMAGE or MONGO_IMAGE

example
  testcontainers -mongo -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	ctx := context.Background()
	if err := containers.Available(ctx); err != nil {
		log.Fatalf("%v\n", err)
	}
	for _, img := range containers.Images(withMongo) {
		if present, err := containers.ImagePresent(ctx, img); err == nil && !present {
			log.Printf("Image %s is not present, pulling...\n", img)
		}
	}

	set, err := containers.Start(ctx, withMongo)
	if err != nil {
		log.Fatalf("Failed to create test containers: %v\n", err)
	}

	env := set.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, env[k])
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	if err := set.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate test containers: %v\n", err)
	}
}
