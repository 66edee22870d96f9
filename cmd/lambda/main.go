// Command main runs the GearSwap API as an AWS Lambda function behind
// API Gateway. The same Fiber routing table serves both deployments.
package main

import (
	"log"

	"gearswap/internal/config"
	"gearswap/internal/gateway"
	"gearswap/internal/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

var handler *gateway.Handler

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	handler = gateway.NewHandler(srv.NewApp())
}

func main() {
	awslambda.Start(handler.Invoke)
}
