package validate_test

import (
	"errors"
	"testing"

	"github.com/askchain/askchain/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type request struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_addr"`
	Content       string `json:"content" validate:"required"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the model is valid.", testID)
		{
			r := request{
				WalletAddress: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
				Content:       "What is a monad?",
			}
			if err := validate.Check(r); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould pass validation: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the model has bad fields.", testID)
		{
			err := validate.Check(request{WalletAddress: "not-a-wallet"})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

			fields := validate.GetFieldErrors(err).Fields()
			if fields["walletAddress"] != "walletAddress must be a valid wallet address" {
				t.Fatalf("\t%s\tTest %d:\tShould explain the wallet error: got %q", failed, testID, fields["walletAddress"])
			}
			t.Logf("\t%s\tTest %d:\tShould explain the wallet error.", success, testID)

			if _, exists := fields["content"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould name the missing content field: %v", failed, testID, fields)
			}
			t.Logf("\t%s\tTest %d:\tShould name the missing content field.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen checking entity ids.", testID)
		{
			if err := validate.CheckID(validate.GenerateID()); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept a generated id: %v", failed, testID, err)
			}
			if err := validate.CheckID("42"); !errors.Is(err, validate.ErrInvalidID) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a malformed id: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept generated ids and reject malformed ones.", success, testID)
		}
	}
}
