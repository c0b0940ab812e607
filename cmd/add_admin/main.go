// Command add_admin creates the first SUPER_ADMIN account.  The HTTP API
// never grants that role, so every deployment is bootstrapped with it:
//
//	add_admin -email root@example.com -first Ada -last Admin -phone 555 -password '...'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/sports-complex/internal/config"
	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
	"github.com/iliyamo/sports-complex/internal/utils"
)

func main() {
	email := flag.String("email", "", "account email (required)")
	first := flag.String("first", "", "first name (required)")
	last := flag.String("last", "", "last name (required)")
	phone := flag.String("phone", "", "phone number (required)")
	password := flag.String("password", "", "initial password, at least 8 characters (required)")
	flag.Parse()

	u := model.User{
		FirstName: strings.TrimSpace(*first),
		LastName:  strings.TrimSpace(*last),
		Email:     strings.TrimSpace(*email),
		Phone:     strings.TrimSpace(*phone),
		Role:      model.RoleSuperAdmin,
		IsActive:  true,
	}
	if u.FirstName == "" || u.LastName == "" || u.Email == "" || u.Phone == "" {
		flag.Usage()
		log.Fatal("email, first, last and phone are required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	hash, err := utils.NewBcryptHasher(cfg.BcryptCost).Hash(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	u.PasswordHash = hash

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, err := repository.NewUserRepo(db).Create(ctx, &u)
	if errors.Is(err, repository.ErrEmailExists) {
		log.Fatalf("an account with email %s already exists", u.Email)
	}
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	fmt.Printf("created SUPER_ADMIN %s (id=%d)\n", u.Email, id)
}
