package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/questguide/questguide-backend/internal/config"
	"github.com/questguide/questguide-backend/internal/database"
	"github.com/questguide/questguide-backend/internal/logger"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/questguide/questguide-backend/internal/service"
)

func main() {
	path := flag.String("file", "cmd/seed-tests/fixtures.yaml", "Path to the YAML fixture")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	file, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open fixture")
	}
	fixture, err := LoadFixture(file)
	file.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load fixture")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo, nil, log)
	testService := service.NewTestService(repository.NewTestRepository(pool), repository.NewTestResultRepository(pool), nil, cfg.ResultRetention, log)
	resourceService := service.NewResourceService(repository.NewResourceRepository(pool), log)

	fmt.Printf("=== Seeding %d users, %d tests, %d resources ===\n",
		len(fixture.Users), len(fixture.Tests), len(fixture.Resources))

	// Users are looked up first so the seed can be re-run.
	users := make(map[string]*model.User, len(fixture.Users))
	for _, fu := range fixture.Users {
		email := strings.ToLower(fu.Email)
		u, err := userRepo.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			role := fu.Role
			if role == "" {
				role = model.RoleStudent
			}
			u, err = authService.Register(ctx, model.SignupRequest{Name: fu.Name, Email: email, Password: fu.Password}, role)
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to seed user")
		}
		users[email] = u
	}

	owner := func(email string) *model.User {
		u, ok := users[strings.ToLower(email)]
		if !ok {
			log.Fatal().Str("created_by", email).Msg("Fixture references an unknown user")
		}
		return u
	}

	for _, ft := range fixture.Tests {
		req, err := ft.Request()
		if err != nil {
			log.Fatal().Err(err).Str("title", ft.Title).Msg("Invalid fixture test")
		}
		t, err := testService.Create(ctx, owner(ft.CreatedBy), req)
		if err != nil {
			var ve *service.ValidationError
			if errors.As(err, &ve) {
				log.Fatal().Interface("fields", ve.Fields).Str("title", ft.Title).Msg("Fixture test rejected")
			}
			log.Fatal().Err(err).Str("title", ft.Title).Msg("Failed to seed test")
		}
		fmt.Printf("  test %q (%d questions)\n", t.Title, len(t.Questions))
	}

	for _, fr := range fixture.Resources {
		res, err := resourceService.Create(ctx, owner(fr.CreatedBy), fr.Request())
		if err != nil {
			log.Fatal().Err(err).Str("title", fr.Title).Msg("Failed to seed resource")
		}
		fmt.Printf("  resource %q\n", res.Title)
	}

	fmt.Println("Seeding complete.")
}
