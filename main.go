package main

import (
	"fmt"
	"os"

	"fjacquet/ledger-import/cmd/account"
	"fjacquet/ledger-import/cmd/catalog"
	"fjacquet/ledger-import/cmd/categorize"
	"fjacquet/ledger-import/cmd/export"
	"fjacquet/ledger-import/cmd/parse"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/cmd/upload"
	"fjacquet/ledger-import/cmd/verify"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(verify.Cmd)
	root.Cmd.AddCommand(upload.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(catalog.Cmd)
	root.Cmd.AddCommand(account.Cmd)
}

func main() {
	root.Cmd.SilenceErrors = true
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
