package agents

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

// Service wires the five nodes onto the graph runner behind a single
// message-handling surface. One Service handles any number of concurrent
// conversations; each run owns its own state.
type Service struct {
	runner *graphx.Runner
	logger zerolog.Logger
}

type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger     zerolog.Logger
	stepBudget int
}

func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithServiceStepBudget(n int) ServiceOption {
	return func(c *serviceConfig) {
		c.stepBudget = n
	}
}

func NewService(
	classifier contractx.Classifier,
	tools contractx.ToolInvoker,
	retriever contractx.Retriever,
	responder contractx.Responder,
	opts ...ServiceOption,
) (*Service, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if tools == nil {
		return nil, errors.New("tool invoker is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if responder == nil {
		return nil, errors.New("responder is required")
	}

	conf := &serviceConfig{logger: log.Logger, stepBudget: graphx.DefaultStepBudget}
	for _, opt := range opts {
		opt(conf)
	}

	nodes := []graphx.Node{
		NewOrchestrator(classifier, responder, conf.logger),
		NewRetention(tools, retriever, responder, conf.logger),
		NewTechSupport(retriever, responder, conf.logger),
		NewBilling(tools, retriever, responder, conf.logger),
		NewProcessor(tools, retriever, responder, conf.logger),
	}

	runner, err := graphx.NewRunner(nodes,
		graphx.WithStepBudget(conf.stepBudget),
		graphx.WithLogger(conf.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Service{runner: runner, logger: conf.logger}, nil
}

// HandleMessage runs one message through the graph and returns the terminal
// state. Confirmed is the external cancellation confirmation for this turn.
func (s *Service) HandleMessage(ctx context.Context, message, email string, confirmed bool) (*statex.ConversationState, error) {
	final, err := s.runner.Run(ctx, statex.New(message, email, confirmed))
	if err != nil {
		return nil, err
	}
	return final, nil
}

// LastReply returns the most recent node reply, or an empty string when no
// node produced one.
func LastReply(st *statex.ConversationState) string {
	if st == nil || len(st.Replies) == 0 {
		return ""
	}
	return st.Replies[len(st.Replies)-1].Message
}
