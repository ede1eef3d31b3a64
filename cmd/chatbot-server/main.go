// Package main Traffic Law Chatbot API Server
//
//	@title			Traffic Law Chatbot API
//	@version		1.0
//	@description	A Vietnamese traffic-law assistant with document-grounded retrieval and conversation management
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	_ "traffic-chatbot/docs" // swagger spec registration
	"traffic-chatbot/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("Starting Traffic Law Chatbot Server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
