package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/logger"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/repository"
	"github.com/smartquizzer/quizzer-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	authService := service.NewAuthService(cfg, repository.NewUserRepository(pool))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	username := prompt(reader, "Enter Username: ")
	if len(username) < 3 {
		fmt.Println("Error: Username must be at least 3 characters")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	fullName := prompt(reader, "Enter Full Name (optional): ")

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := authService.Register(ctx, model.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			fmt.Println("Error: Username or email is already registered")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %d\n", user.Username, user.Email, user.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
