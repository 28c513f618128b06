package vote_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/askchain/askchain/business/core/answer"
	"github.com/askchain/askchain/business/core/coretest"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/vote"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	asker     = "0x1111111111111111111111111111111111111111"
	responder = "0x2222222222222222222222222222222222222222"
	voter     = "0x3333333333333333333333333333333333333333"
)

// Test_Lifecycle walks a question from posting to reward: the asker posts,
// a second user answers, a third user votes, and the asker awards it.
func Test_Lifecycle(t *testing.T) {
	yes := true

	t.Log("Given the need to run the full question lifecycle.")
	{
		cores := coretest.NewCores(nil)
		ctx := context.Background()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		for _, w := range []string{asker, responder, voter} {
			if _, err := cores.User.Resolve(ctx, w, now); err != nil {
				t.Fatalf("\t%s\tShould be able to resolve %s: %v", failed, w, err)
			}
		}

		q, err := cores.Question.Create(ctx, question.NewQuestion{WalletAddress: asker, Content: "What is entropy?", Subject: question.SubjectPhysics, Reward: "10"}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to post: %v", failed, err)
		}
		usr, _ := cores.User.QueryByWallet(ctx, asker)
		if !usr.AskTokens.Equal(decimal.NewFromInt(90)) || q.Rewarded {
			t.Fatalf("\t%s\tShould leave the asker with 90 and an open question.", failed)
		}
		t.Logf("\t%s\tShould leave the asker with 90 and an open question.", success)

		ans, err := cores.Answer.Create(ctx, answer.NewAnswer{WalletAddress: responder, QuestionID: q.ID, Content: "Disorder."}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to answer: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to answer.", success)

		t.Log("\tWhen a third user votes on the answer.")
		{
			if _, err := cores.Vote.Create(ctx, vote.NewVote{AnswerID: ans.ID, WalletAddress: voter, IsUpvote: &yes}, now); err != nil {
				t.Fatalf("\t%s\tShould be able to vote: %v", failed, err)
			}
			if n, _ := cores.Vote.CountByAnswer(ctx, ans.ID); n != 1 {
				t.Fatalf("\t%s\tShould count one vote, got %d.", failed, n)
			}
			t.Logf("\t%s\tShould count one vote.", success)
		}

		t.Log("\tWhen the third user votes again.")
		{
			_, err := cores.Vote.Create(ctx, vote.NewVote{AnswerID: ans.ID, WalletAddress: voter, IsUpvote: &yes}, now)
			if !errors.Is(err, vote.ErrAlreadyVoted) {
				t.Fatalf("\t%s\tShould conflict: %v", failed, err)
			}
			if n, _ := cores.Vote.CountByAnswer(ctx, ans.ID); n != 1 {
				t.Fatalf("\t%s\tShould keep one vote, got %d.", failed, n)
			}
			t.Logf("\t%s\tShould conflict and keep one vote.", success)
		}

		t.Log("\tWhen the responder votes on their own answer.")
		{
			_, err := cores.Vote.Create(ctx, vote.NewVote{AnswerID: ans.ID, WalletAddress: responder, IsUpvote: &yes}, now)
			if !errors.Is(err, vote.ErrOwnAnswer) {
				t.Fatalf("\t%s\tShould be forbidden: %v", failed, err)
			}
			if n, _ := cores.Vote.CountByAnswer(ctx, ans.ID); n != 1 {
				t.Fatalf("\t%s\tShould keep one vote, got %d.", failed, n)
			}
			t.Logf("\t%s\tShould be forbidden and keep one vote.", success)
		}

		t.Log("\tWhen the asker marks the question rewarded.")
		{
			got, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes}, now)
			if err != nil || !got.Rewarded {
				t.Fatalf("\t%s\tShould set the rewarded flag: %v", failed, err)
			}
			t.Logf("\t%s\tShould set the rewarded flag.", success)
		}

		t.Log("\tWhen the responder checks their upvotes.")
		{
			up, err := cores.User.QueryUpvotes(ctx, responder)
			if err != nil || up.Total != 1 || len(up.Answers) != 1 || up.Answers[0].Voters[0].WalletAddress != voter {
				t.Fatalf("\t%s\tShould see the one vote and its voter: %+v %v", failed, up, err)
			}
			t.Logf("\t%s\tShould see the one vote and its voter.", success)
		}
	}
}

func Test_ConcurrentVotes(t *testing.T) {
	yes := true

	t.Log("Given the need to record at most one vote per voter and answer.")
	{
		cores := coretest.NewCores(nil)
		ctx := context.Background()
		now := time.Now().UTC()

		for _, w := range []string{asker, responder, voter} {
			cores.User.Resolve(ctx, w, now)
		}
		q, _ := cores.Question.Create(ctx, question.NewQuestion{WalletAddress: asker, Content: "Q", Subject: question.SubjectMath}, now)
		ans, err := cores.Answer.Create(ctx, answer.NewAnswer{WalletAddress: responder, QuestionID: q.ID, Content: "A"}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to answer: %v", failed, err)
		}

		t.Log("\tWhen the same voter submits ten votes at once.")
		{
			var wg sync.WaitGroup
			errs := make([]error, 10)
			for i := range errs {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, errs[i] = cores.Vote.Create(ctx, vote.NewVote{AnswerID: ans.ID, WalletAddress: voter, IsUpvote: &yes}, now)
				}()
			}
			wg.Wait()

			var ok int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case !errors.Is(err, vote.ErrAlreadyVoted):
					t.Fatalf("\t%s\tShould only fail with a conflict: %v", failed, err)
				}
			}

			if ok != 1 || cores.DB.CountVotes() != 1 {
				t.Fatalf("\t%s\tShould record exactly one vote: ok[%d] rows[%d]", failed, ok, cores.DB.CountVotes())
			}
			t.Logf("\t%s\tShould record exactly one vote.", success)
		}
	}
}

func Test_Rejections(t *testing.T) {
	yes, no := true, false

	t.Log("Given the need to validate votes before touching the store.")
	{
		cores := coretest.NewCores(nil)
		ctx := context.Background()
		now := time.Now().UTC()
		cores.User.Resolve(ctx, voter, now)

		t.Log("\tWhen the vote is a downvote.")
		{
			_, err := cores.Vote.Create(ctx, vote.NewVote{AnswerID: "00000000-0000-0000-0000-000000000001", WalletAddress: voter, IsUpvote: &no}, now)
			if !errors.Is(err, vote.ErrDownvote) {
				t.Fatalf("\t%s\tShould reject the downvote: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the downvote.", success)
		}

		t.Log("\tWhen the answer does not exist.")
		{
			_, err := cores.Vote.Create(ctx, vote.NewVote{AnswerID: "00000000-0000-0000-0000-000000000001", WalletAddress: voter, IsUpvote: &yes}, now)
			if !errors.Is(err, answer.ErrNotFound) {
				t.Fatalf("\t%s\tShould get answer not found: %v", failed, err)
			}
			t.Logf("\t%s\tShould get answer not found.", success)
		}

		if cores.DB.CountVotes() != 0 {
			t.Fatalf("\t%s\tShould not record any vote.", failed)
		}
		t.Logf("\t%s\tShould not record any vote.", success)
	}
}
