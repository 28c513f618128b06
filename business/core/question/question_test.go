package question_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/askchain/askchain/business/core/content"
	"github.com/askchain/askchain/business/core/coretest"
	"github.com/askchain/askchain/business/core/question"
	"github.com/askchain/askchain/business/core/user"
	"github.com/askchain/askchain/business/sys/validate"
	"github.com/askchain/askchain/foundation/ledger"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	asker = "0x1111111111111111111111111111111111111111"
	other = "0x2222222222222222222222222222222222222222"
)

func setup(t *testing.T, confirmer question.Confirmer) (*coretest.Cores, time.Time) {
	t.Helper()

	cores := coretest.NewCores(confirmer)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, w := range []string{asker, other} {
		if _, err := cores.User.Resolve(context.Background(), w, now); err != nil {
			t.Fatalf("\t%s\tShould be able to resolve %s: %v", failed, w, err)
		}
	}

	return cores, now
}

func balance(t *testing.T, cores *coretest.Cores, wallet string) decimal.Decimal {
	t.Helper()

	usr, err := cores.User.QueryByWallet(context.Background(), wallet)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to query %s: %v", failed, wallet, err)
	}
	return usr.AskTokens
}

func Test_ParseReward(t *testing.T) {
	type table struct {
		raw     string
		want    string
		wantErr bool
	}

	tt := []table{
		{raw: "10", want: "10"},
		{raw: `"2.5"`, want: "2.5"},
		{raw: "", want: "0.1"},
		{raw: "lots", want: "0.1"},
		{raw: "0", want: "0.1"},
		{raw: "-3", wantErr: true},
		{raw: "0.000000000000000001", want: "0.000000000000000001"},
		{raw: "0.0000000000000000001", wantErr: true},
		{raw: "1.000000000000000000000", want: "1"},
	}

	t.Log("Given the need to parse the reward a client sends.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen parsing %q.", testID, tst.raw)
			{
				got, err := question.ParseReward(tst.raw)
				if tst.wantErr {
					if !validate.IsFieldErrors(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get a field error: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a field error.", success, testID)
					continue
				}

				if err != nil || !got.Equal(decimal.RequireFromString(tst.want)) {
					t.Fatalf("\t%s\tTest %d:\tShould get %s: got %s %v", failed, testID, tst.want, got, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get %s.", success, testID, tst.want)
			}
		}
	}
}

func Test_Create(t *testing.T) {
	t.Log("Given the need to post questions against a token balance.")
	{
		cores, now := setup(t, nil)
		ctx := context.Background()

		t.Log("\tWhen posting with a reward the balance covers.")
		{
			nq := question.NewQuestion{WalletAddress: asker, Content: "What is 2+2?", Subject: question.SubjectMath, Reward: "10"}

			q, err := cores.Question.Create(ctx, nq, now)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to post: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to post.", success)

			if got := balance(t, cores, asker); !got.Equal(decimal.NewFromInt(90)) {
				t.Fatalf("\t%s\tShould debit exactly the reward: %s", failed, got)
			}
			t.Logf("\t%s\tShould debit exactly the reward.", success)

			if !q.RewardAt.Equal(now.Add(7*24*time.Hour)) || q.Rewarded || q.Status(now) != question.StatusOpen {
				t.Fatalf("\t%s\tShould be open for seven days: %+v", failed, q)
			}
			t.Logf("\t%s\tShould be open for seven days.", success)

			if got := q.Status(now.Add(question.RewardWindow + time.Second)); got != question.StatusExpired {
				t.Fatalf("\t%s\tShould expire once the window passes: %s", failed, got)
			}
			t.Logf("\t%s\tShould expire once the window passes.", success)

			doc, ok := cores.Contents.Document(q.CID)
			if !ok || doc.Content != nq.Content || doc.Tags["subject"] != question.SubjectMath || doc.Tags["asker"] != asker {
				t.Fatalf("\t%s\tShould reference the pinned body: %+v", failed, doc)
			}
			t.Logf("\t%s\tShould reference the pinned body.", success)
		}

		t.Log("\tWhen posting a reward above the balance.")
		{
			nq := question.NewQuestion{WalletAddress: asker, Content: "Too rich", Subject: question.SubjectOther, Reward: "90.5"}

			_, err := cores.Question.Create(ctx, nq, now)

			var ife *question.InsufficientFundsError
			if !errors.As(err, &ife) {
				t.Fatalf("\t%s\tShould fail with insufficient funds: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with insufficient funds.", success)

			if !ife.Available.Equal(decimal.NewFromInt(90)) || !ife.Required.Equal(decimal.RequireFromString("90.5")) {
				t.Fatalf("\t%s\tShould report both amounts: %s", failed, ife)
			}
			t.Logf("\t%s\tShould report both amounts.", success)

			if got := balance(t, cores, asker); !got.Equal(decimal.NewFromInt(90)) || cores.DB.CountQuestions() != 1 {
				t.Fatalf("\t%s\tShould leave the balance and questions unchanged.", failed)
			}
			t.Logf("\t%s\tShould leave the balance and questions unchanged.", success)
		}

		t.Log("\tWhen the wallet never connected.")
		{
			nq := question.NewQuestion{WalletAddress: "0x3333333333333333333333333333333333333333", Content: "Hi", Subject: question.SubjectMath}

			if _, err := cores.Question.Create(ctx, nq, now); !errors.Is(err, user.ErrNotFound) {
				t.Fatalf("\t%s\tShould require a connected wallet: %v", failed, err)
			}
			t.Logf("\t%s\tShould require a connected wallet.", success)
		}

		t.Log("\tWhen the content store fails.")
		{
			cores.Contents.PinErr = errors.New("unauthorized")
			defer func() { cores.Contents.PinErr = nil }()

			nq := question.NewQuestion{WalletAddress: other, Content: "Lost", Subject: question.SubjectBiology, Reward: "1"}

			_, err := cores.Question.Create(ctx, nq, now)

			var ue *content.UploadError
			if !errors.As(err, &ue) {
				t.Fatalf("\t%s\tShould fail with an upload error: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with an upload error.", success)

			if got := balance(t, cores, other); !got.Equal(user.StartingGrant) || cores.DB.CountQuestions() != 1 {
				t.Fatalf("\t%s\tShould not debit or insert anything.", failed)
			}
			t.Logf("\t%s\tShould not debit or insert anything.", success)
		}

		t.Log("\tWhen the subject is not known.")
		{
			nq := question.NewQuestion{WalletAddress: other, Content: "Hi", Subject: "ASTROLOGY"}

			fe := validate.GetFieldErrors(func() error { _, err := cores.Question.Create(ctx, nq, now); return err }())
			if fe.Fields()["subject"] == "" {
				t.Fatalf("\t%s\tShould get a field error on subject.", failed)
			}
			t.Logf("\t%s\tShould get a field error on subject.", success)
		}
	}
}

func Test_CreateRace(t *testing.T) {
	t.Log("Given the need to never overdraw a balance.")
	{
		cores, now := setup(t, nil)
		ctx := context.Background()

		t.Log("\tWhen ten posts of 30 race on a balance of 100.")
		{
			var wg sync.WaitGroup
			var mu sync.Mutex
			var ok, short int

			for n := 0; n < 10; n++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					nq := question.NewQuestion{WalletAddress: asker, Content: "race", Subject: question.SubjectMath, Reward: "30"}
					_, err := cores.Question.Create(ctx, nq, now)

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, question.ErrInsufficientFunds):
						short++
					default:
						t.Errorf("\t%s\tShould only fail with insufficient funds: %v", failed, err)
					}
				}()
			}
			wg.Wait()

			if ok != 3 || short != 7 || cores.DB.CountQuestions() != 3 {
				t.Fatalf("\t%s\tShould accept exactly three posts: ok[%d] short[%d]", failed, ok, short)
			}
			t.Logf("\t%s\tShould accept exactly three posts.", success)

			if got := balance(t, cores, asker); !got.Equal(decimal.NewFromInt(10)) {
				t.Fatalf("\t%s\tShould leave 10 tokens: %s", failed, got)
			}
			t.Logf("\t%s\tShould leave 10 tokens.", success)
		}
	}
}

func Test_QueryDegraded(t *testing.T) {
	t.Log("Given the need to list questions when some bodies are unavailable.")
	{
		cores, now := setup(t, nil)
		ctx := context.Background()

		var qs []question.Question
		for i, w := range []string{asker, other, asker} {
			nq := question.NewQuestion{WalletAddress: w, Content: "body", Subject: question.SubjectPhysics, Reward: "1"}
			q, err := cores.Question.Create(ctx, nq, now.Add(time.Duration(i)*time.Minute))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to post: %v", failed, err)
			}
			qs = append(qs, q)
		}
		cores.Contents.Break(qs[2].CID)

		t.Log("\tWhen listing one asker's questions.")
		{
			listings, err := cores.Question.Query(ctx, question.QueryFilter{WalletAddress: asker})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to list: %v", failed, err)
			}

			if len(listings) != 2 || listings[0].ID != qs[2].ID || listings[1].ID != qs[0].ID {
				t.Fatalf("\t%s\tShould list the asker's questions newest first: %+v", failed, listings)
			}
			t.Logf("\t%s\tShould list the asker's questions newest first.", success)

			if listings[0].Err == nil || listings[0].Title != content.Placeholder || listings[1].Err != nil || listings[1].Title != "body" {
				t.Fatalf("\t%s\tShould mark only the broken title.", failed)
			}
			t.Logf("\t%s\tShould mark only the broken title.", success)
		}

		t.Log("\tWhen asking for the detail of the broken question.")
		{
			d, err := cores.Question.QueryDetail(ctx, qs[2].ID)
			if err != nil {
				t.Fatalf("\t%s\tShould not fail outright: %v", failed, err)
			}

			if d.ContentErr == nil || !d.Reward.Equal(decimal.NewFromInt(1)) || d.Subject != question.SubjectPhysics {
				t.Fatalf("\t%s\tShould return the metadata with the error marked: %+v", failed, d)
			}
			t.Logf("\t%s\tShould return the metadata with the error marked.", success)
		}

		t.Log("\tWhen listing for an unknown wallet.")
		{
			_, err := cores.Question.Query(ctx, question.QueryFilter{WalletAddress: "0x9999999999999999999999999999999999999999"})
			if !errors.Is(err, user.ErrNotFound) {
				t.Fatalf("\t%s\tShould get not found: %v", failed, err)
			}
			t.Logf("\t%s\tShould get not found.", success)
		}
	}
}

type fakeConfirmer struct {
	err   error
	calls int
}

func (f *fakeConfirmer) ConfirmTransfer(ctx context.Context, txHash string) error {
	f.calls++
	return f.err
}

func Test_MarkRewarded(t *testing.T) {
	yes, no := true, false
	txHash := "0x" + "ab" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"

	t.Log("Given the need to let only the asker mark a question rewarded.")
	{
		conf := &fakeConfirmer{}
		cores, now := setup(t, conf)
		ctx := context.Background()

		q, err := cores.Question.Create(ctx, question.NewQuestion{WalletAddress: asker, Content: "Q", Subject: question.SubjectMath, Reward: "5"}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to post: %v", failed, err)
		}

		t.Log("\tWhen another wallet tries.")
		{
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: other, Rewarded: &yes}, now)
			if !errors.Is(err, question.ErrForbidden) {
				t.Fatalf("\t%s\tShould be forbidden: %v", failed, err)
			}
			t.Logf("\t%s\tShould be forbidden.", success)

			got, _ := cores.Question.QueryByID(ctx, q.ID)
			if got.Rewarded {
				t.Fatalf("\t%s\tShould leave the flag unchanged.", failed)
			}
			t.Logf("\t%s\tShould leave the flag unchanged.", success)
		}

		t.Log("\tWhen the transfer hash is malformed.")
		{
			calls := conf.calls
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: "0x1234"}, now)
			if !validate.IsFieldErrors(err) || conf.calls != calls {
				t.Fatalf("\t%s\tShould reject the hash before asking the ledger: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the hash before asking the ledger.", success)
		}

		t.Log("\tWhen the ledger cannot be reached.")
		{
			conf.err = errors.New("dial tcp: connection refused")
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: txHash}, now)
			if !errors.Is(err, question.ErrLedgerUnavailable) {
				t.Fatalf("\t%s\tShould report the ledger as unavailable: %v", failed, err)
			}
			t.Logf("\t%s\tShould report the ledger as unavailable.", success)

			got, _ := cores.Question.QueryByID(ctx, q.ID)
			if got.Rewarded {
				t.Fatalf("\t%s\tShould leave the flag unchanged.", failed)
			}
			t.Logf("\t%s\tShould leave the flag unchanged.", success)
			conf.err = nil
		}

		t.Log("\tWhen the transfer is not on chain.")
		{
			conf.err = ledger.ErrNotConfirmed
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: txHash}, now)
			if !errors.Is(err, question.ErrTransferFailed) {
				t.Fatalf("\t%s\tShould refuse the unconfirmed transfer: %v", failed, err)
			}
			t.Logf("\t%s\tShould refuse the unconfirmed transfer.", success)
			conf.err = nil
		}

		t.Log("\tWhen the asker marks it with a confirmed transfer.")
		{
			got, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: txHash}, now)
			if err != nil || !got.Rewarded || got.RewardTx != txHash {
				t.Fatalf("\t%s\tShould set the flag and record the transfer: %+v %v", failed, got, err)
			}
			t.Logf("\t%s\tShould set the flag and record the transfer.", success)

			if got.Status(now) != question.StatusRewarded {
				t.Fatalf("\t%s\tShould report the rewarded status.", failed)
			}
			t.Logf("\t%s\tShould report the rewarded status.", success)

			if got.Status(now.Add(question.RewardWindow+time.Second)) != question.StatusRewarded {
				t.Fatalf("\t%s\tShould stay rewarded after the deadline.", failed)
			}
			t.Logf("\t%s\tShould stay rewarded after the deadline.", success)
		}

		t.Log("\tWhen the asker repeats the call.")
		{
			calls := conf.calls
			got, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: txHash}, now)
			if err != nil || !got.Rewarded || conf.calls != calls {
				t.Fatalf("\t%s\tShould succeed without another confirmation: %v", failed, err)
			}
			t.Logf("\t%s\tShould succeed without another confirmation.", success)
		}

		t.Log("\tWhen the asker tries to clear the flag.")
		{
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &no}, now)
			if !errors.Is(err, question.ErrRewardCleared) {
				t.Fatalf("\t%s\tShould reject clearing the flag: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject clearing the flag.", success)
		}
	}
}

func Test_MarkRewardedWithoutLedger(t *testing.T) {
	yes := true

	t.Log("Given the need to check transfer hashes when no ledger is configured.")
	{
		cores, now := setup(t, nil)
		ctx := context.Background()

		q, err := cores.Question.Create(ctx, question.NewQuestion{WalletAddress: asker, Content: "Q", Subject: question.SubjectOther, Reward: "1"}, now)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to post: %v", failed, err)
		}

		t.Log("\tWhen the hash is malformed.")
		{
			_, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: "not-a-hash"}, now)
			fe := validate.GetFieldErrors(err)
			if len(fe) != 1 || fe[0].Field != "txHash" || !strings.HasPrefix(fe[0].Err, ledger.ErrInvalidHash.Error()) {
				t.Fatalf("\t%s\tShould get a txHash field error: %v", failed, err)
			}
			t.Logf("\t%s\tShould get a txHash field error.", success)
		}

		t.Log("\tWhen the hash is well formed.")
		{
			txHash := "0x" + strings.Repeat("cd", 32)
			got, err := cores.Question.MarkRewarded(ctx, q.ID, question.MarkRewarded{WalletAddress: asker, Rewarded: &yes, TxHash: txHash}, now)
			if err != nil || !got.Rewarded || got.RewardTx != txHash {
				t.Fatalf("\t%s\tShould record the hash unconfirmed: %+v %v", failed, got, err)
			}
			t.Logf("\t%s\tShould record the hash unconfirmed.", success)
		}
	}
}

func Test_SubjectsMatchValidation(t *testing.T) {
	t.Log("Given the need to keep the subject list and its validation in step.")
	{
		field, ok := reflect.TypeOf(question.NewQuestion{}).FieldByName("Subject")
		if !ok {
			t.Fatalf("\t%s\tShould find the Subject field.", failed)
		}

		want := "required,oneof=" + strings.Join(question.Subjects, " ")
		if got := field.Tag.Get("validate"); got != want {
			t.Fatalf("\t%s\tShould validate against every subject: got %q want %q", failed, got, want)
		}
		t.Logf("\t%s\tShould validate against every subject.", success)
	}
}
