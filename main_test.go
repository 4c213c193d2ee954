package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `2024/01/15 Swiggy order
    Expenses:Food    500.00
    Assets:Banking:HDFC

2024/01/31 Monthly salary
    Assets:Banking:HDFC    ₹50,000.00
    Income:Salary

2024/01/31 Monthly salary
    Assets:Banking:HDFC    ₹50,000.00
    Income:Salary
`

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	content := "log:\n  level: error\nstore:\n  driver: sqlite\n  sqlite:\n    path: " + filepath.Join(dir, "data", "ledger.db") + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0600))
	return &cli{t: t, dir: dir, config: cfg}
}

func (c *cli) run(args ...string) error {
	root.Cmd.SetArgs(append(args, "--config", c.config))
	return root.Cmd.Execute()
}

// output runs a command writing to a file under the test directory and returns its content.
func (c *cli) output(name string, args ...string) string {
	c.t.Helper()
	out := filepath.Join(c.dir, "out", name)
	require.NoError(c.t, c.run(append(args, "-o", out)...))
	data, err := os.ReadFile(out)
	require.NoError(c.t, err)
	return string(data)
}

func decodeJSON(t *testing.T, data string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	return decoded
}

func TestCLI_ImportWorkflow(t *testing.T) {
	c := newCLI(t)
	catalogFile, err := filepath.Abs(filepath.Join("database", "categories.yaml"))
	require.NoError(t, err)
	input := filepath.Join(c.dir, "jan.ledger")
	require.NoError(t, os.WriteFile(input, []byte(statement), 0600))

	err = c.run("verify", "-i", input)
	assert.ErrorIs(t, err, common.ErrNoUser)

	seeded := c.output("seed.csv", "catalog", "seed", "-i", catalogFile, "--format", "csv")
	assert.Len(t, strings.Split(strings.TrimSpace(seeded), "\n"), 16)
	listed := c.output("list.csv", "catalog", "list", "--format", "csv")
	assert.Equal(t, seeded, listed)

	account := decodeJSON(t, c.output("account.json", "account", "create", "-u", "42", "--name", "HDFC", "--balance", "1,000", "--format", "json"))
	assert.Equal(t, "HDFC", account["account_name"])

	parsed := c.output("parsed.csv", "parse", "-u", "42", "-i", input, "--format", "csv")
	assert.Len(t, strings.Split(strings.TrimSpace(parsed), "\n"), 4)

	verified := decodeJSON(t, c.output("verify.json", "verify", "-u", "42", "-i", input, "--format", "json"))
	summary := verified["validation_summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["processable"])
	assert.Equal(t, float64(1), summary["repeated_entries"])

	uploaded := decodeJSON(t, c.output("upload.json", "upload", "-u", "42", "-i", input, "--format", "json"))
	assert.Equal(t, float64(2), uploaded["total_success"])
	assert.True(t, decimal.RequireFromString(uploaded["final_balance"].(string)).Equal(decimal.NewFromInt(50500)))

	// the reviewed CSV batch is now entirely stored, so nothing is committed
	again := decodeJSON(t, c.output("again.json", "upload", "-u", "42", "-i", filepath.Join(c.dir, "out", "parsed.csv"), "--format", "json"))
	assert.Equal(t, float64(0), again["total_success"])

	shown := c.output("show.csv", "account", "show", "-u", "42", "--format", "csv")
	assert.Contains(t, shown, ",HDFC,50500.00,INR")

	exported := c.output("jan-export.ledger", "export", "-u", "42", "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, exported, "2024/01/15 Swiggy order\n")
	assert.Contains(t, exported, "    Income:Salary\n")

	err = c.run("export", "-u", "42", "--from", "2025-01-01", "--to", "2025-01-31")
	assert.Error(t, err)

	match := decodeJSON(t, c.output("match.json", "categorize", "-u", "42", "-d", "Swiggy food", "-a", "Expenses:Dining", "--format", "json"))
	assert.Equal(t, "Food & Dining", match["category_name"])
}
