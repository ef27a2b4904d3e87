package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ride-share/internal/cli"
)

func main() {
	var (
		userID   = flag.String("user-id", "", "ID of the user (subject)")
		role     = flag.String("role", "PASSENGER", "User role: PASSENGER | DRIVER | ADMIN")
		verified = flag.Bool("verified", false, "Mark a DRIVER as verified (may publish rides)")
		secret   = flag.String("secret", os.Getenv("JWT_SECRET"), "JWT HMAC secret (HS256), defaults to $JWT_SECRET")
		ttl      = flag.Duration("ttl", 2*time.Hour, "Token lifetime")
	)
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: token --user-id=<id> --role=DRIVER --verified --secret='<secret>' [--ttl=2h]")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateUserToken(*secret, *userID, *role, *verified, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:      %s\n", claims.Subject)
	fmt.Printf("  role:     %s\n", claims.Role)
	fmt.Printf("  verified: %t\n", claims.VerifiedDriver)
	fmt.Printf("  iat:      %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:      %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
