package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "FinVault ledger CLI tool",
		Long:  `A command line interface for interacting with the FinVault ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check the global zero-sum invariant",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})

	// Entity commands
	entityCmd := &cobra.Command{
		Use:   "entity",
		Short: "Inter-entity consolidation operations",
	}

	entityCmd.AddCommand(&cobra.Command{
		Use:   "balance <entityA> <entityB>",
		Short: "Show the consolidated balance between two entities",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/entities/%s/balance/%s", args[0], args[1]))
		},
	})

	entityCmd.AddCommand(&cobra.Command{
		Use:   "clear <entityA> <entityB>",
		Short: "Run a clearing cycle for an entity pair",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON(fmt.Sprintf("/api/v1/entities/%s/clear/%s", args[0], args[1]))
		},
	})

	entityCmd.AddCommand(&cobra.Command{
		Use:   "circular-scan <entityID>",
		Short: "Scan an entity's fund-flow graph for circular funding",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/entities/%s/circular-scan", args[0]))
		},
	})

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	accountCmd.AddCommand(&cobra.Command{
		Use:   "reconcile <accountID>",
		Short: "Replay an account's entries and report drift",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/accounts/%s/reconciliation", args[0]))
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "position <accountID>",
		Short: "Show an account's reconstructed position",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/accounts/%s/position", args[0]))
		},
	})

	rootCmd.AddCommand(ledgerCmd, entityCmd, accountCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	status, body := request(http.MethodGet, "/api/v1/ledger/consistency")

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\n", status)
		printPretty(result)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	printPretty(result)
}

func getJSON(path string) {
	status, body := request(http.MethodGet, path)
	printResponse(status, body)
}

func postJSON(path string) {
	status, body := request(http.MethodPost, path)
	printResponse(status, body)
}

func request(method, path string) (int, []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func printResponse(status int, body []byte) {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Status: %d\n%s\n", status, string(body))
		if status >= 400 {
			os.Exit(1)
		}
		return
	}

	if status >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\n", status)
		printPretty(result)
		os.Exit(1)
	}

	printPretty(result)
}

func printPretty(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
