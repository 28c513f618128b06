// Package agent provides canned subject agents that give a first response to
// a question by keyword.
package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAgent is returned for an agent type that is not registered.
var ErrUnknownAgent = errors.New("unknown agent type")

// Confidence levels reported with a response.
const (
	MatchConfidence   = 0.85
	DefaultConfidence = 0.3
)

// Response is what an agent answers.
type Response struct {
	Answer     string
	Confidence float64
}

// Ask contains the information needed to query an agent.
type Ask struct {
	AgentType string `json:"agentType" validate:"required"`
	Question  string `json:"question" validate:"required"`
}

type topic struct {
	keyword string
	answer  string
}

// handler holds the topics of one agent. Topics are matched in order, so a
// keyword that contains another must come first.
type handler struct {
	subject string
	topics  []topic
}

var agents = map[string]handler{
	"math": {
		subject: "mathematics",
		topics: []topic{
			{"calculus", "Calculus studies rates of change and accumulation through derivatives and integrals."},
			{"algebra", "Algebra works with symbols and the rules for manipulating them to solve equations."},
			{"statistics", "Statistics collects, analyzes and interprets data to draw conclusions under uncertainty."},
			{"equation", "To solve an equation, isolate the unknown by applying the same operation to both sides."},
			{"integral", "An integral accumulates a quantity, such as the area under a curve, over an interval."},
			{"derivative", "A derivative measures how a function's output changes as its input changes."},
		},
	},
	"physics": {
		subject: "physics",
		topics: []topic{
			{"mechanics", "Mechanics describes motion and the forces that cause it, starting from Newton's laws."},
			{"quantum", "Quantum mechanics describes matter and energy at atomic scales, where quantities come in discrete units."},
			{"relativity", "Relativity links space and time, and shows the speed of light is the same for every observer."},
			{"thermodynamics", "Thermodynamics relates heat, work and energy, and explains why entropy tends to increase."},
			{"electromagnetism", "Electromagnetism unifies electric and magnetic fields, as described by Maxwell's equations."},
			{"force", "A force is a push or pull; by Newton's second law it equals mass times acceleration."},
		},
	},
	"chemistry": {
		subject: "chemistry",
		topics: []topic{
			{"inorganic", "Inorganic chemistry covers compounds outside carbon chemistry, such as metals and minerals."},
			{"organic", "Organic chemistry studies carbon compounds, their structure and their reactions."},
			{"biochemistry", "Biochemistry studies the chemical processes inside living organisms."},
			{"reaction", "A chemical reaction rearranges atoms; balance it so each element appears equally on both sides."},
			{"element", "An element is a pure substance made of atoms with the same number of protons."},
			{"compound", "A compound is a substance made of two or more elements chemically bonded in fixed ratios."},
		},
	},
}

// Types returns the registered agent types.
func Types() []string {
	return []string{"math", "physics", "chemistry"}
}

// Query returns the agent's response to the question. The first keyword
// found in the question picks the answer. Without a match the agent asks for
// more detail with low confidence.
func Query(agentType string, question string) (Response, error) {
	h, ok := agents[strings.ToLower(agentType)]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownAgent, agentType)
	}

	q := strings.ToLower(question)
	for _, t := range h.topics {
		if strings.Contains(q, t.keyword) {
			return Response{Answer: t.answer, Confidence: MatchConfidence}, nil
		}
	}

	resp := Response{
		Answer:     fmt.Sprintf("I'm not sure about the answer to your %s question. Could you provide more details or rephrase it?", h.subject),
		Confidence: DefaultConfidence,
	}

	return resp, nil
}
