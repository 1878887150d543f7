package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"Postboard/internal/auth"
)

// genjwks generates an ES256 signing key for a development identity service.
// The public half is written as a JWKS to serve at JWKS_URL.
//
// Usage:
//
//	go run ./cmd/genjwks [-kid postboard-dev] [-out jwks.json] [-token user-id] [-issuer iss]
//
// -token additionally prints a one-day bearer token for that user id
func main() {
	kid := flag.String("kid", "postboard-dev", "key id")
	out := flag.String("out", "", "write the public JWKS to this file instead of stdout")
	userID := flag.String("token", "", "also mint a bearer token for this user id")
	issuer := flag.String("issuer", "", "issuer claim for the minted token")
	flag.Parse()

	key, err := auth.GenerateSigningKey(*kid)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	privateJSON, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal private JWK: %v", err)
	}

	set, err := auth.PublicKeySet(key)
	if err != nil {
		log.Fatalf("Failed to build JWKS: %v", err)
	}
	publicJSON, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal JWKS: %v", err)
	}

	fmt.Println("Private signing key (keep SECRET, never commit it):")
	fmt.Println(string(privateJSON))

	if *out != "" {
		if err := os.WriteFile(*out, publicJSON, 0o644); err != nil {
			log.Fatalf("Failed to write JWKS: %v", err)
		}
		fmt.Printf("\nPublic JWKS written to %s; serve it and point JWKS_URL at it\n", *out)
	} else {
		fmt.Println("\nPublic JWKS (serve it and point JWKS_URL at it):")
		fmt.Println(string(publicJSON))
	}

	if *userID != "" {
		token, err := auth.IssueES256(key, *userID, *issuer, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		fmt.Printf("\nBearer token for %s (valid 24h):\n%s\n", *userID, token)
	}
}
