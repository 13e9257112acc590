package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/signup"
	"layerdemo/internal/infrastructure/crypto"
	"layerdemo/internal/infrastructure/postgres"
	"layerdemo/internal/infrastructure/relay"
	"layerdemo/internal/infrastructure/sandbox"
	"layerdemo/internal/shared/config"
	"layerdemo/internal/shared/messages"
)

const usage = `Layer Admin CLI - Tools for the Layer sign-up relay

Usage:
  admin <command> [options]

Commands:
  wizard        Walk the sign-up wizard against a running relay using the sandbox widget
  item-lookup   Show a linked item kept in the Postgres store

Examples:
  # Phone number eligible for Layer
  admin wizard --phone=415-555-0011

  # Not eligible for Layer, eligible for Extended Autofill
  admin wizard --phone=415-555-0000 --birthday=01/18/1975

  # Falls back to the manual form
  admin wizard --phone=415-555-0000 --birthday=1980-05-05 \
    --first-name=Ann --last-name=Perkins --email=ann@example.com --password=nurse-ann-1

  # Inspect a linked item (needs STORE_ENABLED=true, DB_* and ENCRYPTION_KEY)
  admin item-lookup --item-id=eVBnVMp7zdTJLkRNr33Rs6zr7KNJqBFL9DrE6
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "wizard":
		runWizard(os.Args[2:])
	case "item-lookup":
		runItemLookup(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runWizard(args []string) {
	fs := flag.NewFlagSet("wizard", flag.ExitOnError)

	server := fs.String("server", "http://localhost:3001", "Relay base URL")
	phone := fs.String("phone", "", "Phone number to submit")
	birthday := fs.String("birthday", "", "Date of birth to submit if Layer is not available")
	firstName := fs.String("first-name", "", "Manual form: first name")
	lastName := fs.String("last-name", "", "Manual form: last name")
	email := fs.String("email", "", "Manual form: email")
	password := fs.String("password", "", "Manual form: password")
	messagesFile := fs.String("messages", "", "JSON file overriding the debug texts (default $MESSAGES_FILE)")
	timeoutStr := fs.String("timeout", "1m", "Timeout for the whole run (e.g., 30s, 2m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin wizard [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nSandbox identities:")
		fmt.Println("  415-555-0011   eligible for Layer")
		fmt.Println("  415-555-0000   not eligible, asks for a birthday")
		fmt.Println("  01/18/1975     eligible for Extended Autofill")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *phone == "" {
		fmt.Println("Error: must specify --phone")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	msgs, err := loadMessages(*messagesFile)
	if err != nil {
		log.Fatalf("Failed to load messages: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	flow := signup.NewFlow(relay.NewClient(*server), sandbox.NewLauncher(), msgs)
	flow.Observe(printStep)

	fmt.Printf("Client user ID: %s\n", flow.ClientUserID())

	if err := flow.Start(ctx); err != nil {
		log.Fatalf("Failed to start wizard: %v", err)
	}
	if err := flow.ClickCreateAccount(); err != nil {
		log.Fatalf("Failed to open the sign-up form: %v", err)
	}
	if err := flow.SubmitPhone(*phone); err != nil {
		log.Fatalf("Failed to submit phone: %v", err)
	}

	if flow.State() == signup.StateBirthdayInput {
		if *birthday == "" {
			fmt.Println("\nLayer is not available for this phone. Pass --birthday to try Extended Autofill.")
			os.Exit(2)
		}
		if err := flow.SubmitBirthday(*birthday); err != nil {
			log.Fatalf("Failed to submit birthday: %v", err)
		}
	}

	if flow.State() == signup.StateManualForm {
		if *email == "" || *password == "" {
			fmt.Println("\nFalling back to the manual form. Pass --first-name, --last-name, --email and --password to finish sign-up.")
			os.Exit(2)
		}
		_, err := flow.SubmitManualForm(ctx, applicant.RegisterParams{
			FirstName: *firstName,
			LastName:  *lastName,
			Email:     *email,
			Password:  *password,
		})
		if err != nil {
			log.Fatalf("Manual sign-up failed: %v", err)
		}
	}

	snap := flow.Snapshot()
	if snap.State != signup.StateSuccess {
		log.Fatalf("Wizard stopped in %s", snap.State)
	}

	printAccountInfo(snap)
}

// loadMessages reads the debug texts from path, falling back to MESSAGES_FILE
// and then to the built-in texts.
func loadMessages(path string) (*messages.Messages, error) {
	if path == "" {
		path = os.Getenv("MESSAGES_FILE")
	}
	return messages.Load(path)
}

func printStep(s signup.Snapshot) {
	fmt.Printf("\n[%s]\n%s\n", s.State, s.DebugInfo)
}

func printAccountInfo(s signup.Snapshot) {
	fmt.Println("\n=== Sign-up complete ===")
	if s.AccountInfo == nil {
		return
	}

	out, err := json.MarshalIndent(s.AccountInfo, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode account info: %v", err)
	}
	fmt.Println(string(out))
}

func runItemLookup(args []string) {
	fs := flag.NewFlagSet("item-lookup", flag.ExitOnError)

	itemID := fs.String("item-id", "", "Vendor item ID to look up")
	showToken := fs.Bool("show-token", false, "Print the decrypted access token instead of a masked one")

	fs.Usage = func() {
		fmt.Println("Usage: admin item-lookup [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *itemID == "" {
		fmt.Println("Error: must specify --item-id")
		fs.Usage()
		os.Exit(1)
	}

	// Only the store settings are needed, not the vendor credentials
	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Store.Enabled {
		log.Fatalf("Linked items are only kept when STORE_ENABLED=true")
	}

	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to create encryptor: %v", err)
	}
	itemRepo := postgres.NewItemRepository(db, encryptor)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, err := itemRepo.GetByItemID(ctx, *itemID)
	if err != nil {
		log.Fatalf("Failed to look up item: %v", err)
	}

	token := item.AccessToken
	if !*showToken {
		token = maskToken(token)
	}

	fmt.Printf("\n=== Item %s ===\n", item.ItemID)
	fmt.Printf("  Institution:   %s\n", item.InstitutionName)
	fmt.Printf("  Accounts:      %d\n", item.AccountCount)
	fmt.Printf("  Access token:  %s\n", token)
	fmt.Printf("  Linked at:     %s\n", item.CreatedAt.Format(time.RFC3339))
}

// maskToken keeps the environment prefix and the last four characters
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	prefix := ""
	if idx := strings.LastIndex(token[:len(token)-4], "-"); idx != -1 && idx < 20 {
		prefix = token[:idx+1]
	}
	return prefix + strings.Repeat("*", len(token)-len(prefix)-4) + token[len(token)-4:]
}
