package agent_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/askchain/askchain/business/core/agent"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Query(t *testing.T) {
	type table struct {
		name       string
		agentType  string
		question   string
		confidence float64
		contains   string
	}

	tt := []table{
		{name: "math", agentType: "math", question: "How do I take the DERIVATIVE of x^2?", confidence: agent.MatchConfidence, contains: "derivative"},
		{name: "physics", agentType: "Physics", question: "what is quantum tunnelling", confidence: agent.MatchConfidence, contains: "Quantum"},
		{name: "chemistry", agentType: "chemistry", question: "balance this reaction", confidence: agent.MatchConfidence, contains: "reaction"},
		{name: "default", agentType: "math", question: "why is the sky blue", confidence: agent.DefaultConfidence, contains: "mathematics question"},
	}

	t.Log("Given the need to answer questions with the subject agents.")
	{
		for testID, tst := range tt {
			testID, tst := testID, tst
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen asking the %s agent.", testID, tst.agentType)
				{
					resp, err := agent.Query(tst.agentType, tst.question)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to query the agent: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to query the agent.", success, testID)

					if resp.Confidence != tst.confidence {
						t.Fatalf("\t%s\tTest %d:\tShould get confidence %v, got %v.", failed, testID, tst.confidence, resp.Confidence)
					}
					t.Logf("\t%s\tTest %d:\tShould get confidence %v.", success, testID, tst.confidence)

					if !strings.Contains(resp.Answer, tst.contains) {
						t.Fatalf("\t%s\tTest %d:\tShould mention %q: %s", failed, testID, tst.contains, resp.Answer)
					}
					t.Logf("\t%s\tTest %d:\tShould mention %q.", success, testID, tst.contains)
				}
			}

			t.Run(tst.name, f)
		}

		t.Log("\tWhen asking an agent that does not exist.")
		{
			if _, err := agent.Query("history", "who won"); !errors.Is(err, agent.ErrUnknownAgent) {
				t.Fatalf("\t%s\tShould get ErrUnknownAgent: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrUnknownAgent.", success)
		}
	}
}
