package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/askchain/askchain/app/tooling/admin/commands"
	"github.com/askchain/askchain/foundation/keystore"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_GenKey(t *testing.T) {
	t.Log("Given the need to create wallet keys.")
	{
		dir := t.TempDir()

		if err := commands.GenKey(filepath.Join(dir, "alice")); err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate a key.", success)

		ks, err := keystore.New(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the key folder: %v", failed, err)
		}
		if _, err := ks.Account("alice"); err != nil {
			t.Fatalf("\t%s\tShould find the key by name: %v", failed, err)
		}
		t.Logf("\t%s\tShould find the key by name.", success)

		if err := commands.GenKey(filepath.Join(dir, "alice.ecdsa")); err == nil {
			t.Fatalf("\t%s\tShould refuse to overwrite a key.", failed)
		}
		t.Logf("\t%s\tShould refuse to overwrite a key.", success)
	}
}
