package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/logger"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

// issue-token signs a user token for local testing, standing in for the
// identity provider.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Issue Test Token ===")

	fmt.Print("Enter user id (sub): ")
	subject, _ := reader.ReadString('\n')
	subject = strings.TrimSpace(subject)
	if subject == "" {
		fmt.Println("Error: user id is required")
		return
	}

	fmt.Print("Enter display name (optional): ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Enter lifetime in hours (default 12): ")
	hoursStr, _ := reader.ReadString('\n')
	hoursStr = strings.TrimSpace(hoursStr)
	hours := 12
	if hoursStr != "" {
		h, err := strconv.Atoi(hoursStr)
		if err != nil || h <= 0 {
			fmt.Println("Error: lifetime must be a positive number")
			return
		}
		hours = h
	}

	// The secret is typed without echo; empty keeps JWT_SECRET.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Enter signing secret (empty uses JWT_SECRET): ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading secret")
			return
		}
		if s := strings.TrimSpace(string(secret)); s != "" {
			cfg.JWTSecret = s
		}
	}

	token, err := service.NewAuthService(cfg).IssueToken(subject, name, time.Duration(hours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	fmt.Printf("\nToken for %q (valid %dh):\n%s\n", subject, hours, token)
}
