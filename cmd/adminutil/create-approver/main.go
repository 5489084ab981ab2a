package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gaugyan-payout-service/config"
	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Provisions an approver account (SECURITY, FINANCE, or ADMIN) directly
// in the database. Approvers never self-register through the API.
func main() {
	username := flag.String("username", "", "Username for the approver account")
	password := flag.String("password", "", "Initial password")
	role := flag.String("role", "", "Approver role: SECURITY, FINANCE, or ADMIN")
	flag.Parse()

	if *username == "" || *password == "" || *role == "" {
		log.Fatalf("usage: go run cmd/adminutil/create-approver/main.go -username sec_officer -password '...' -role SECURITY")
	}

	accountRole := domain.AccountRole(*role)
	if _, ok := domain.ApproverRoleFor(accountRole); !ok {
		log.Fatalf("invalid role %q: must be SECURITY, FINANCE, or ADMIN", *role)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	hashSvc := service.NewArgon2HashService()
	passwordHash, err := hashSvc.Hash(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	_, err = conn.Exec(ctx, `INSERT INTO accounts (id, username, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, *username, passwordHash, accountRole, domain.AccountStatusActive, now,
	)
	if err != nil {
		log.Fatalf("failed to create approver account: %v", err)
	}

	fmt.Printf("Approver %s (%s) created with id %s.\n", *username, accountRole, id)
}
