// Command skepticchat runs a local training chat against the dialogue
// policy engine, with no language model attached: drafts are empty and
// the persona speaks through its canned lines, objections and the
// purchase model. Useful for tuning scoring profiles offline.
//
// Inside the chat:
//
//	/evidence demand_letter,business_card   submit evidence keys
//	/quit                                   exit
//
// Everything else is sent as a manager message.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	skeptic "github.com/dialoglabs/skeptic-persona-go"
	"github.com/dialoglabs/skeptic-persona-go/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		profilePath string
		sessionID   string
		baseTrust   int
		seedSalt    string
		redisAddr   string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "skepticchat",
		Short: "Interactive trainer chat against the skeptic persona engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg := skeptic.DefaultConfig()
			if profilePath != "" {
				var err error
				if cfg, err = skeptic.LoadConfig(profilePath); err != nil {
					return err
				}
			}

			logger := zap.NewNop()
			if verbose {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}
			defer logger.Sync()

			var sessions skeptic.SessionStore = skeptic.NewMemorySessionStore()
			if redisAddr == "" {
				redisAddr = os.Getenv("SKEPTIC_REDIS_ADDR")
			}
			if redisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: redisAddr})
				sessions = store.NewRedisSessionStore(client)
			}

			engine := skeptic.NewEngine(skeptic.EngineOptions{
				Config: cfg,
				Store:  sessions,
				Draws:  skeptic.NewHashDrawSource(seedSalt),
				Logger: logger,
			})

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return runChat(cmd, engine, sessionID, baseTrust)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "path to a YAML scoring profile")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: random)")
	cmd.Flags().IntVar(&baseTrust, "base-trust", 20, "base trust for every turn")
	cmd.Flags().StringVar(&seedSalt, "seed-salt", "", "salt for the deterministic draw source")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for session storage (default: in-memory)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log engine decisions")
	return cmd
}

func runChat(cmd *cobra.Command, engine *skeptic.Engine, sessionID string, baseTrust int) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s — type a message, /evidence key1,key2 or /quit\n", sessionID)

	var history []skeptic.Turn
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var pendingEvidence []string

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			stats := engine.Stats()
			fmt.Fprintf(out, "turns=%d commitments=%d\n", stats.TurnsProcessed, stats.CommitmentsMade)
			return nil
		case strings.HasPrefix(line, "/evidence "):
			keys := strings.Split(strings.TrimPrefix(line, "/evidence "), ",")
			for _, k := range keys {
				if k = strings.TrimSpace(k); k != "" {
					pendingEvidence = append(pendingEvidence, k)
				}
			}
			fmt.Fprintf(out, "queued evidence: %v\n", pendingEvidence)
			continue
		}

		result, err := engine.Process(skeptic.TurnRequest{
			BaseTrust:    baseTrust,
			Evidences:    pendingEvidence,
			History:      history,
			LastUserText: line,
			SessionID:    sessionID,
		})
		if err != nil {
			return err
		}
		pendingEvidence = nil

		fmt.Fprintf(out, "[trust=%d stage=%s evidence=%d need_evidence=%v actions=%v]\n",
			result.Trust, result.Stage, result.EvidenceCount, result.NeedEvidence, result.SuggestedActions)
		fmt.Fprintln(out, result.Reply)

		history = append(history,
			skeptic.Turn{Role: skeptic.RoleUser, Text: line},
			skeptic.Turn{Role: skeptic.RoleAssistant, Text: result.Reply, Stage: result.Stage},
		)
	}
}
