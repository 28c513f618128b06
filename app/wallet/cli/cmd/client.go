package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/askchain/askchain/foundation/signature"
)

var client = http.Client{Timeout: 30 * time.Second}

// wallet is the key the commands act for.
type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func loadWallet() (wallet, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return wallet{}, fmt.Errorf("loading key: %w", err)
	}

	w := wallet{
		key:     privateKey,
		address: signature.PublicKeyToAddress(privateKey.PublicKey),
	}

	return w, nil
}

// send issues the request against the api and writes the indented response
// body to out. A status of 400 or above is returned as an error carrying the
// body.
func send(out io.Writer, method string, baseURL string, path string, body any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, pretty.String())
	}

	fmt.Fprintln(out, pretty.String())
	return nil
}
