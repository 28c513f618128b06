package main

import "github.com/askchain/askchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
