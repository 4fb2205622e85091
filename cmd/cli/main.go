package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosolopay/mosolo/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mosolo-cli",
		Short: "Mosolo CLI tool",
		Long:  `A command line interface for interacting with the Mosolo payments API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Mosolo API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(feeCmd())
	rootCmd.AddCommand(withdrawalCmd())
	rootCmd.AddCommand(depositCmd())
	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func feeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Fee operations",
	}

	var (
		sender    string
		recipient string
		role      string
	)

	quoteCmd := &cobra.Command{
		Use:   "quote [amount]",
		Short: "Quote the fee for a transfer amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return postJSON("/api/v1/fees/quote", map[string]any{
				"amount":              amount,
				"sender_territory":    sender,
				"recipient_territory": recipient,
				"actor_role":          role,
			})
		},
	}
	quoteCmd.Flags().StringVar(&sender, "from", "CD", "Sender territory code")
	quoteCmd.Flags().StringVar(&recipient, "to", "CD", "Recipient territory code")
	quoteCmd.Flags().StringVar(&role, "role", "user", "Initiator role (user or agent)")

	cmd.AddCommand(quoteCmd)
	return cmd
}

func withdrawalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawal",
		Short: "Withdrawal request operations",
	}

	var (
		clientID    string
		phone       string
		role        string
		initiatorID string
	)

	createCmd := &cobra.Command{
		Use:   "create [amount]",
		Short: "Open a withdrawal request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return postJSON("/api/v1/withdrawals", map[string]any{
				"client_id":         clientID,
				"amount":            amount,
				"destination_phone": phone,
				"initiator_role":    role,
				"initiator_id":      initiatorID,
			})
		},
	}
	createCmd.Flags().StringVar(&clientID, "client", "", "Client account ID")
	createCmd.Flags().StringVar(&phone, "phone", "", "Destination phone number")
	createCmd.Flags().StringVar(&role, "role", "user", "Initiator role (user or agent)")
	createCmd.Flags().StringVar(&initiatorID, "initiator", "", "Initiator account ID")

	var (
		code    string
		partyID string
	)

	confirmCmd := &cobra.Command{
		Use:   "confirm [id]",
		Short: "Confirm a withdrawal request with its verification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/withdrawals/"+args[0]+"/confirm", map[string]any{
				"code":     code,
				"party_id": partyID,
			})
		},
	}
	confirmCmd.Flags().StringVar(&code, "code", "", "Verification code")
	confirmCmd.Flags().StringVar(&partyID, "party", "", "Confirming party account ID")

	rejectCmd := &cobra.Command{
		Use:   "reject [id]",
		Short: "Cancel a pending withdrawal request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/withdrawals/"+args[0]+"/reject", map[string]any{
				"party_id": partyID,
			})
		},
	}
	rejectCmd.Flags().StringVar(&partyID, "party", "", "Cancelling party account ID")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch a withdrawal request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/withdrawals/" + args[0])
		},
	}

	cmd.AddCommand(createCmd, confirmCmd, rejectCmd, getCmd)
	return cmd
}

func depositCmd() *cobra.Command {
	var (
		agentID  string
		clientID string
	)

	cmd := &cobra.Command{
		Use:   "deposit [amount]",
		Short: "Record an agent deposit for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return postJSON("/api/v1/deposits", map[string]any{
				"agent_id":  agentID,
				"client_id": clientID,
				"amount":    amount,
			})
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "Agent account ID")
	cmd.Flags().StringVar(&clientID, "client", "", "Client account ID")
	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var (
		phone     string
		name      string
		role      string
		territory string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts", map[string]any{
				"phone":     phone,
				"name":      name,
				"role":      role,
				"territory": territory,
			})
		},
	}
	createCmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	createCmd.Flags().StringVar(&name, "name", "", "Account holder name")
	createCmd.Flags().StringVar(&role, "role", "user", "Account role (user, agent, admin)")
	createCmd.Flags().StringVar(&territory, "territory", "CD", "Territory code")

	balanceCmd := &cobra.Command{
		Use:   "balance [id]",
		Short: "Show an account's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + args[0] + "/balance")
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [id]",
		Short: "Sweep an agent's commission balance into their primary balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/"+args[0]+"/commission/sweep", nil)
		},
	}

	cmd.AddCommand(createCmd, balanceCmd, sweepCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath)
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

// parseAmount parses a positive integer amount in the smallest currency unit.
func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", amount)
	}
	return amount, nil
}

func postJSON(path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, data)
	}

	if len(data) == 0 {
		fmt.Printf("OK (status %d)\n", resp.StatusCode)
		return nil
	}

	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		fmt.Println(string(data))
		return nil
	}

	printJSON(pretty)
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
