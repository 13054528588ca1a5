package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	agentsx "github.com/techflow/careflow/agent/agents"
	classifierx "github.com/techflow/careflow/agent/classifier"
	contractx "github.com/techflow/careflow/agent/contract"
	llmx "github.com/techflow/careflow/agent/llm"
	promptx "github.com/techflow/careflow/agent/prompt"
	ragx "github.com/techflow/careflow/agent/rag"
	respondx "github.com/techflow/careflow/agent/respond"
	statex "github.com/techflow/careflow/agent/state"
	toolx "github.com/techflow/careflow/agent/tool"
	configx "github.com/techflow/careflow/pkg/config"
	logx "github.com/techflow/careflow/pkg/logger"
	openrouterx "github.com/techflow/careflow/pkg/openrouter"
)

type AppConfig struct {
	PgDSN         string `envconfig:"PG_DSN" split_words:"true"`
	StatusLogPath string `envconfig:"STATUS_LOG_PATH" split_words:"true" default:"customer_status_log.txt"`
}

type scenario struct {
	Label     string
	Message   string
	Email     string
	Confirmed bool
}

var scenarios = []scenario{
	{
		Label:   "cancellation with financial hardship",
		Message: "I want to cancel my Care+ insurance, it's too expensive for me right now. My email is sarah.chen@email.com",
	},
	{
		Label:     "confirmed cancellation",
		Message:   "Yes, cancel it. I still want to cancel my Care+ plan, it's too expensive. My email is sarah.chen@email.com",
		Confirmed: true,
	},
	{
		Label:   "technical issue",
		Message: "My TechFlow X1 battery drains really fast and the screen flickers. james.wilson@email.com",
	},
	{
		Label:   "billing question",
		Message: "Why was I charged $12.99 this month? My email is maria.garcia@email.com",
	},
	{
		Label:   "unknown customer cancellation",
		Message: "I want to cancel my plan, I never use it. My email is nobody@example.com",
	},
	{
		Label:   "general question",
		Message: "Hi! What exactly does Care+ cover?",
	},
}

func main() {
	var (
		message     = flag.String("message", "", "customer message to process")
		email       = flag.String("email", "", "customer email, if known up front")
		confirm     = flag.Bool("confirm", false, "customer has explicitly confirmed cancellation")
		scenarioNum = flag.Int("scenario", 0, "run a built-in demo scenario (1-6)")
		interactive = flag.Bool("i", false, "interactive mode, one message per line")
	)
	// The config loader reads -env through flag.Lookup, so it must be
	// registered before Parse runs.
	flag.String("env", "", "path to .env file")
	flag.Parse()

	logConf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logConf)

	appCfg := configx.MustNew[AppConfig]("CAREFLOW")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")

	ctx := context.Background()

	svc, cleanup, err := buildService(ctx, appCfg, llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble support engine")
	}
	defer cleanup()

	switch {
	case *scenarioNum > 0:
		if *scenarioNum > len(scenarios) {
			log.Fatal().Int("scenario", *scenarioNum).Msg("unknown scenario")
		}
		sc := scenarios[*scenarioNum-1]
		fmt.Printf("=== Scenario %d: %s ===\n", *scenarioNum, sc.Label)
		runOnce(ctx, svc, sc.Message, sc.Email, sc.Confirmed)
	case *interactive:
		runInteractive(ctx, svc)
	case strings.TrimSpace(*message) != "":
		runOnce(ctx, svc, *message, *email, *confirm)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func buildService(ctx context.Context, appCfg *AppConfig, llmCfg *llmx.Config) (*agentsx.Service, func(), error) {
	cleanup := func() {}

	if llmCfg.Enabled() {
		if err := llmCfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	// Customer directory and status log: Postgres when a DSN is configured,
	// embedded fixtures otherwise.
	var (
		directory toolx.CustomerDirectory
		status    toolx.StatusWriter
	)
	if strings.TrimSpace(appCfg.PgDSN) != "" {
		store, err := toolx.NewPgStore(appCfg.PgDSN)
		if err != nil {
			return nil, nil, err
		}
		directory, status = store, store
		cleanup = func() { _ = store.Close() }
		log.Info().Msg("using postgres customer store")
	} else {
		dir, err := toolx.NewEmbeddedDirectory()
		if err != nil {
			return nil, nil, err
		}
		directory = dir
		status = toolx.NewFileStatusLog(appCfg.StatusLogPath)
		log.Info().Int("customers", dir.Size()).Msg("using embedded customer fixtures")
	}

	rules, err := toolx.LoadDefaultOfferRules()
	if err != nil {
		return nil, nil, err
	}
	invoker, err := toolx.NewInvoker(directory, rules, status)
	if err != nil {
		return nil, nil, err
	}

	// Policy index. Real embeddings when a key is present; the hashing
	// embedder keeps retrieval deterministic and offline otherwise.
	var embedder ragx.Embedder = ragx.NewHashingEmbedder()
	if llmCfg.Enabled() {
		if client := openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleResponder)); client != nil {
			openaiEmbedder, err := ragx.NewOpenAIEmbedder(client, "")
			if err != nil {
				return nil, nil, err
			}
			embedder = openaiEmbedder
		}
	}
	docs, err := ragx.LoadPolicyDocuments()
	if err != nil {
		return nil, nil, err
	}
	index, err := ragx.BuildIndex(ctx, embedder, docs)
	if err != nil {
		return nil, nil, err
	}
	storeCleanup := cleanup
	cleanup = func() {
		_ = index.Close()
		storeCleanup()
	}

	prompts := promptx.LoadPromptSet()

	var (
		classifier contractx.Classifier = classifierx.NewKeywordClassifier()
		responder  contractx.Responder  = respondx.NewTemplateResponder()
	)
	if llmCfg.Enabled() {
		classifierModel, err := llmCfg.OpenRouterFor(llmx.RoleClassifier).New(ctx)
		if err != nil {
			return nil, nil, err
		}
		classifier, err = classifierx.NewLLMClassifier(classifierModel, prompts.Classifier)
		if err != nil {
			return nil, nil, err
		}

		responderModel, err := llmCfg.OpenRouterFor(llmx.RoleResponder).New(ctx)
		if err != nil {
			return nil, nil, err
		}
		responder, err = respondx.NewLLMResponder(responderModel, map[string]string{
			"orchestrator": prompts.Classifier,
			"retention":    prompts.Retention,
			"tech_support": prompts.TechSupport,
			"billing":      prompts.Billing,
			"processor":    prompts.Processor,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("model", llmCfg.Model).Msg("using llm classifier and responder")
	} else {
		log.Info().Msg("no api key configured, using offline classifier and responder")
	}

	svc, err := agentsx.NewService(classifier, invoker, index, responder)
	if err != nil {
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func runOnce(ctx context.Context, svc *agentsx.Service, message, email string, confirmed bool) {
	final, err := svc.HandleMessage(ctx, message, email, confirmed)
	if err != nil {
		log.Fatal().Err(err).Msg("graph run failed")
	}
	printFinalState(final)
}

func runInteractive(ctx context.Context, svc *agentsx.Service) {
	fmt.Println("TechFlow Care+ support. Type a message, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		// In interactive mode confirmation comes from the message itself.
		cls, err := classifierx.NewKeywordClassifier().Classify(ctx, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		final, err := svc.HandleMessage(ctx, line, cls.CustomerEmail, cls.ExplicitConfirmation)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(agentsx.LastReply(final))
	}
}

func printFinalState(st *statex.ConversationState) {
	for _, r := range st.Replies {
		fmt.Printf("\n[%s]\n%s\n", r.Node, r.Message)
	}

	fmt.Println("\n--- final state ---")
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to render final state")
		return
	}
	fmt.Println(string(out))
}
