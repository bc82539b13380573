package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casterly-dev/casterly/internal/config"
)

func addAccount(t *testing.T, dir, initial string) {
	t.Helper()
	out, err := runCasterly(t, "--dir", dir, "account", "add",
		"--description", "current account", "--digits", "4567", "--entity", "lloyds", "--initial", initial)
	require.NoError(t, err)
	require.Contains(t, out, "Opened account 1")
}

func TestAccount_MovementsUpdateBalance(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "20")

	out, err := runCasterly(t, "--dir", dir, "movement", "add", "--account", "1",
		"--description", "Starbucks coffee", "--amount", "-12.50", "--date", "2012-05-30")
	require.NoError(t, err)
	assert.Contains(t, out, "balance 7.50")

	_, err = runCasterly(t, "--dir", dir, "movement", "add", "--account", "1",
		"--description", "Refund", "--amount", "6.89", "--date", "2012-05-31")
	require.NoError(t, err)

	out, err = runCasterly(t, "--dir", dir, "account", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "lloyds <****4567> - 14.39")
	assert.Contains(t, out, "owner:           tyrion")

	_, err = runCasterly(t, "--dir", dir, "movement", "delete", "1")
	assert.ErrorContains(t, err, "invalid operation")

	out, err = runCasterly(t, "--dir", dir, "account", "verify", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "expected:  14.39")
	assert.Contains(t, out, "ok")

	out, err = runCasterly(t, "--dir", dir, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "14.39")
}

func TestAccount_AddValidates(t *testing.T) {
	dir := initProject(t)

	_, err := runCasterly(t, "--dir", dir, "account", "add",
		"--description", "x", "--digits", "4567", "--entity", "barclays")
	assert.Error(t, err)

	_, err = runCasterly(t, "--dir", dir, "account", "add",
		"--description", "x", "--digits", "45", "--entity", "lloyds")
	assert.Error(t, err)

	_, err = runCasterly(t, "--dir", dir, "account", "add",
		"--description", "x", "--digits", "4567", "--entity", "lloyds", "--initial", "lots")
	assert.Error(t, err)
}

func TestMovement_ListAndCategorize(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "0")

	_, err := runCasterly(t, "--dir", dir, "movement", "add", "--account", "1",
		"--description", "Tesco", "--amount", "-21.80", "--date", "2012-01-06")
	require.NoError(t, err)
	_, err = runCasterly(t, "--dir", dir, "movement", "add", "--account", "1",
		"--description", "Salary", "--amount", "1567", "--date", "2012-01-31")
	require.NoError(t, err)

	// Category 1 is the first default category.
	_, err = runCasterly(t, "--dir", dir, "movement", "categorize", "1", "--category", "1")
	require.NoError(t, err)

	out, err := runCasterly(t, "--dir", dir, "movement", "list", "--csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,2012-01-06,1,Tesco,-21.80,-21.80,Groceries", lines[1])
	assert.Equal(t, "2,2012-01-31,1,Salary,1567.00,1545.20,", lines[2])

	out, err = runCasterly(t, "--dir", dir, "movement", "list", "--uncategorized", "--totals")
	require.NoError(t, err)
	assert.NotContains(t, out, "Tesco")
	assert.Contains(t, out, "earnings:  1567.00")

	_, err = runCasterly(t, "--dir", dir, "movement", "categorize", "1")
	assert.Error(t, err)
}

func TestRulesSuggestAndApply(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "0")

	_, err := runCasterly(t, "--dir", dir, "category", "add", "food")
	require.NoError(t, err)
	catID := "12" // after the default categories

	_, err = runCasterly(t, "--dir", dir, "rule", "add", "food", "--category", catID)
	require.NoError(t, err)
	_, err = runCasterly(t, "--dir", dir, "rule", "add", "food(", "--category", catID)
	assert.Error(t, err)

	out, err := runCasterly(t, "--dir", dir, "suggest", "some food")
	require.NoError(t, err)
	assert.Contains(t, out, "food")

	out, err = runCasterly(t, "--dir", dir, "suggest", "Pub")
	require.NoError(t, err)
	assert.Contains(t, out, "no suggestion")

	_, err = runCasterly(t, "--dir", dir, "movement", "add", "--account", "1",
		"--description", "fast food", "--amount", "-8", "--date", "2012-01-06")
	require.NoError(t, err)

	out, err = runCasterly(t, "--dir", dir, "categorize", "apply", "--account", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Categorized 1 movements, 0 without a suggestion")

	rules := "rules:\n  - expression: (?i)rent\n    category: Housing\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules", "suggestion-rules.yaml"), []byte(rules), 0o644))
	out, err = runCasterly(t, "--dir", dir, "rule", "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1 new rules")

	out, err = runCasterly(t, "--dir", dir, "rule", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(?i)rent")
	assert.Contains(t, out, "Housing")
}

func TestImportAndReport(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "340")
	statement, err := filepath.Abs("../../testdata/lloyds_statement.csv")
	require.NoError(t, err)

	out, err := runCasterly(t, "--dir", dir, "import", "file", statement, "--account", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "23 accepted, 0 rejected")

	out, err = runCasterly(t, "--dir", dir, "import", "file", statement, "--account", "1", "--show-rejected")
	require.NoError(t, err)
	assert.Contains(t, out, "0 accepted, 23 rejected")
	assert.Contains(t, out, "rejected 2011-12-25 Christmas presents -134.30")

	out, err = runCasterly(t, "--dir", dir, "import", "history")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "lloyds_statement.csv"))

	out, err = runCasterly(t, "--dir", dir, "account", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "current balance: 2310.60")

	out, err = runCasterly(t, "--dir", dir, "report", "month", "2012", "2", "--by-category")
	require.NoError(t, err)
	assert.Contains(t, out, "2012-02-01 to 2012-02-29")
	assert.Contains(t, out, "movements: 9")
	assert.Contains(t, out, "balance:   16.66")
	assert.Contains(t, out, "(none)")

	out, err = runCasterly(t, "--dir", dir, "report", "week", "2012", "5", "--account", "1", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "2012-01-30 to 2012-02-05")
	assert.Contains(t, out, "expenses:  557.50")
	assert.Contains(t, out, "earnings:  1567.00")
	assert.Contains(t, out, "balance:   1009.50")
	assert.Contains(t, out, "Flights back to Spain")

	_, err = runCasterly(t, "--dir", dir, "report", "month", "2012", "13")
	assert.Error(t, err)
}

func TestImportScan(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "340")

	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Feeds = []config.Feed{{Name: "lloyds", Entity: "lloyds", AccountID: 1}}
	require.NoError(t, config.Save(cfgPath, cfg))

	data, err := os.ReadFile("../../testdata/lloyds_statement.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "lloyds_2012.csv"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "mystery.csv"), data, 0o644))

	out, err := runCasterly(t, "--dir", dir, "import", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "lloyds_2012.csv: 23 accepted, 0 rejected (feed lloyds)")
	assert.Contains(t, out, "mystery.csv: skipped")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "lloyds_2012.csv"))
	assert.NoError(t, err)

	out, err = runCasterly(t, "--dir", dir, "account", "verify", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "stored:    2310.60")
}

func TestImportFile_BadStatement(t *testing.T) {
	dir := initProject(t)
	addAccount(t, dir, "20")
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("header\n30/05/2012,DEB,'30-94-57,01234567,Coffee,,,7.50\n"), 0o644))

	_, err := runCasterly(t, "--dir", dir, "import", "file", path, "--account", "1")
	assert.ErrorContains(t, err, "line 2")

	out, err := runCasterly(t, "--dir", dir, "account", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "current balance: 20.00")
}
