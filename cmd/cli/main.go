package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Rakesh-6305/project-store/internal/config"
	"github.com/Rakesh-6305/project-store/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const usage = "expected 'add-admin', 'add-student' or 'reset-password' subcommand"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		username, password := credentials("add-admin", os.Args[2:])
		createAccount(store.AdminAccounts, username, password)
	case "add-student":
		username, password := credentials("add-student", os.Args[2:])
		createAccount(store.StudentAccounts, username, password)
	case "reset-password":
		cmd := flag.NewFlagSet("reset-password", flag.ExitOnError)
		admin := cmd.Bool("admin", false, "Reset an admin account instead of a student")
		username := cmd.String("username", "", "Account to reset")
		password := cmd.String("password", "", "New password")
		cmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			cmd.PrintDefaults()
			os.Exit(1)
		}
		table := store.StudentAccounts
		if *admin {
			table = store.AdminAccounts
		}
		resetPassword(table, *username, *password)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func credentials(name string, args []string) (string, string) {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	username := cmd.String("username", "", "Username for the new account")
	password := cmd.String("password", "", "Password for the new account")
	cmd.Parse(args)
	if *username == "" || *password == "" {
		fmt.Println("username and password are required")
		cmd.PrintDefaults()
		os.Exit(1)
	}
	return *username, *password
}

func openStore() *store.Store {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before server
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func hash(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	return string(hashed)
}

func createAccount(table, username, password string) {
	db := openStore()
	defer db.Close()

	err := db.CreateAccount(table, username, hash(password))
	if errors.Is(err, store.ErrDuplicate) {
		log.Fatalf("Account '%s' already exists", username)
	}
	if err != nil {
		log.Fatalf("Failed to create account: %v", err)
	}

	fmt.Printf("Account '%s' created successfully.\n", username)
}

func resetPassword(table, username, password string) {
	db := openStore()
	defer db.Close()

	err := db.SetPassword(table, username, hash(password))
	if errors.Is(err, store.ErrNotFound) {
		log.Fatalf("Account '%s' not found", username)
	}
	if err != nil {
		log.Fatalf("Failed to reset password: %v", err)
	}

	fmt.Printf("Password for '%s' updated.\n", username)
}
