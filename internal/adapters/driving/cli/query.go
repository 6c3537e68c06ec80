package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/querra/internal/core/domain"
)

var (
	flagQueryPath    string
	flagQueryURL     string
	flagQueryType    string
	flagQueryTimeout time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Send a one-shot document query to a running server",
	Long: `Publishes a document query over NATS and prints the reply envelope
as JSON. Either --path or --url identifies the document source.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryPath, "path", "", "document file path")
	queryCmd.Flags().StringVar(&flagQueryURL, "url", "", "document URL")
	queryCmd.Flags().StringVar(&flagQueryType, "type", "", "document kind hint (webpage|pdf|txt|csv|docx|md)")
	queryCmd.Flags().DurationVar(&flagQueryTimeout, "timeout", 90*time.Second, "reply timeout")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if flagQueryPath == "" && flagQueryURL == "" {
		return fmt.Errorf("either --path or --url is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := nats.Connect(cfg.Server.NatsURL, nats.Name("querra-query"))
	if err != nil {
		return fmt.Errorf("connect to nats at %s: %w", cfg.Server.NatsURL, err)
	}
	defer conn.Close()

	payload, err := json.Marshal(domain.Request{
		Type:  flagQueryType,
		Path:  flagQueryPath,
		URL:   flagQueryURL,
		Query: args[0],
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	msg, err := conn.Request(cfg.Server.Subject, payload, flagQueryTimeout)
	if err != nil {
		return fmt.Errorf("request on %s: %w", cfg.Server.Subject, err)
	}

	var pretty json.RawMessage = msg.Data
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		cmd.Println(string(msg.Data))
		return nil
	}
	cmd.Println(string(out))
	return nil
}
