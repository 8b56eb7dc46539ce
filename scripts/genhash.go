// genhash prints an argon2id PHC string for seeding local_credentials.
//
//	SEED_PASSWORD='Super-Long-Temp-Password' go run ./scripts/genhash.go

package main

import (
	"fmt"
	"log"
	"os"

	"maintdash/internal/auth"
)

func main() {
	pw := os.Getenv("SEED_PASSWORD")
	if pw == "" {
		log.Fatal("set SEED_PASSWORD")
	}
	phc, err := auth.HashPassword(pw, auth.DefaultArgonParams())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(phc)
}
