package ckeyscan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ckeyscan/ckeyscan/internal/audit"
	"github.com/ckeyscan/ckeyscan/internal/config"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every user directory at a temp home and returns a separate
// working directory, so scans never see the cache or audit files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("CI", "1")
	work := t.TempDir()
	t.Chdir(work)
	return work
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type result struct {
	out, err string
	code     int
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)
	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetIn(strings.NewReader(""))
	logOutput = &errb
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		logOutput = os.Stderr
	})
	code := run(args)
	return result{out: out.String(), err: errb.String(), code: code}
}

// legacyRecord frames n payload bytes cycling through 'A'..'Z'.
func legacyRecord(n, seed int) []byte {
	var b bytes.Buffer
	b.WriteString("\x01\x04ckey!")
	for i := 0; i < n; i++ {
		b.WriteByte(byte('A' + (i+seed)%26))
	}
	b.WriteByte(0x04)
	return b.Bytes()
}

func writeWallet(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// zeroScenario is 200 zero bytes with the tag at offset 60.
func zeroScenario() []byte {
	data := make([]byte, 200)
	copy(data[60:], "ckey")
	return data
}

func TestScan_TextOutput(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "w", "wallet.dat"), append(legacyRecord(40, 0), legacyRecord(40, 5)...))

	r := execute(t, "scan", filepath.Join(dir, "w"))
	require.Equal(t, 0, r.code, r.err)
	lines := strings.Split(strings.TrimSpace(r.out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ckey!4142434445"))
	assert.True(t, strings.HasPrefix(lines[1], "ckey!464748"))
	assert.Equal(t, "2 ckey matches found.", lines[2])
	assert.Contains(t, r.err, "legacy mode")
}

func TestScan_StructuralZeroScenario(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "wallet.dat")
	writeWallet(t, p, zeroScenario())

	r := execute(t, "scan", "--mode", "structural", p)
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "No matches found.\n0 ckey matches found.\n", r.out)

	r = execute(t, "scan", "--mode", "structural", "--skip-degenerate=false", "--no-cache", p)
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "ckey!"+strings.Repeat("00", 48)+"\n1 ckey matches found.\n", r.out)
}

func TestScan_JSONAndFailOn(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))

	r := execute(t, "scan", "--json", "--fail-on", "any", dir)
	assert.Equal(t, 1, r.code)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.out), &recs), r.out)
	require.Len(t, recs, 1)
	assert.Equal(t, "wallet.dat", recs[0]["path"])
	assert.Equal(t, "legacy", recs[0]["mode"])
	assert.Len(t, recs[0]["hex"], 80)
	assert.NotContains(t, r.err, "Scanning")

	r = execute(t, "scan", "--json", "--fail-on", "none", dir)
	assert.Equal(t, 0, r.code)
}

func TestScan_EmptyJSONIsArray(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), []byte("nothing here"))
	r := execute(t, "scan", "--json", dir)
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "[]", strings.TrimSpace(r.out))
}

func TestScan_SARIF(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))

	r := execute(t, "scan", "--sarif", dir)
	require.Equal(t, 0, r.code, r.err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.out), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
	runs := doc["runs"].([]any)
	results := runs[0].(map[string]any)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "legacy", results[0].(map[string]any)["ruleId"])
}

func TestScan_Table(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))
	r := execute(t, "scan", "--table", dir)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, strings.ToUpper(r.out), "OFFSET")
	assert.Contains(t, r.out, "wallet.dat")
	assert.Contains(t, r.out, "1 ckey matches found.")
}

func TestScan_MissingFileIsError(t *testing.T) {
	dir := isolate(t)
	r := execute(t, "scan", filepath.Join(dir, "nope.dat"))
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "error:")
}

func TestScan_BadModeIsError(t *testing.T) {
	dir := isolate(t)
	r := execute(t, "scan", "--mode", "fancy", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "unknown scan mode")
}

func TestScan_ConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), zeroScenario())

	// Global asks for structural without the degenerate filter.
	gp, err := config.GlobalPath()
	require.NoError(t, err)
	writeWallet(t, gp, []byte("mode: structural\nskip_degenerate: false\n"))
	r := execute(t, "scan", "--no-cache", dir)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "1 ckey matches found.")

	// Local overrides global.
	writeWallet(t, filepath.Join(dir, ".ckeyscan.yml"), []byte("skip_degenerate: true\n"))
	r = execute(t, "scan", "--no-cache", dir)
	assert.Contains(t, r.out, "0 ckey matches found.")

	// Environment overrides local.
	t.Setenv("CKEYSCAN_SKIP_DEGENERATE", "false")
	r = execute(t, "scan", "--no-cache", dir)
	assert.Contains(t, r.out, "1 ckey matches found.")

	// Flags override everything.
	r = execute(t, "scan", "--no-cache", "--skip-degenerate=true", dir)
	assert.Contains(t, r.out, "0 ckey matches found.")
}

func TestScan_InvalidConfigIsError(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CKEYSCAN_FAIL_ON", "sometimes")
	r := execute(t, "scan", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "fail_on")
}

func TestScan_SQLiteWarnedOncePerFileInOrder(t *testing.T) {
	dir := isolate(t)
	sqlite := append([]byte("SQLite format 3\x00"), make([]byte, 100)...)
	writeWallet(t, filepath.Join(dir, "b", "wallet.dat"), sqlite)
	writeWallet(t, filepath.Join(dir, "a", "wallet.dat"), sqlite)

	for range 2 {
		r := execute(t, "scan", dir)
		require.Equal(t, 0, r.code, r.err)
		assert.Equal(t, 2, strings.Count(r.err, "SQLite"), r.err)
		a := strings.Index(r.err, "a/wallet.dat is a SQLite")
		b := strings.Index(r.err, "b/wallet.dat is a SQLite")
		require.True(t, a >= 0 && b >= 0, r.err)
		assert.Less(t, a, b)
	}
}

func TestScan_FailOnValidated(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))

	r := execute(t, "scan", "--fail-on", "anyy", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "--fail-on")

	writeWallet(t, filepath.Join(dir, ".ckeyscan.yml"), []byte("fail_on: \"\"\n"))
	r = execute(t, "scan", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "fail_on")
}

func TestBaselineUpdateSuppresses(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "data", "wallet.dat"), legacyRecord(40, 0))

	r := execute(t, "baseline", "update", "data")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "1 records")
	b, err := report.LoadBaseline(filepath.Join(dir, report.DefaultBaselineFile))
	require.NoError(t, err)
	assert.Len(t, b.Items, 1)

	r = execute(t, "scan", "--fail-on", "any", "data")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "0 ckey matches found.")

	writeWallet(t, filepath.Join(dir, "data", "other.dat"), legacyRecord(40, 9))
	r = execute(t, "scan", "--fail-on", "any", "data")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.out, "1 ckey matches found.")
}

func TestScan_AuditAndHistory(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))

	r := execute(t, "history")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "No scans recorded.")

	require.Equal(t, 0, execute(t, "scan", dir).code)
	require.Equal(t, 0, execute(t, "scan", "--no-audit", dir).code)
	require.Equal(t, 0, execute(t, "scan", "--mode", "structural", dir).code)

	r = execute(t, "history", "--json")
	require.Equal(t, 0, r.code, r.err)
	var recs []audit.ScanRecord
	require.NoError(t, json.Unmarshal([]byte(r.out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "structural", string(recs[0].Mode))
	assert.Equal(t, 1, recs[1].TotalRecords)
	assert.NotContains(t, r.out, "4142434445")

	r = execute(t, "history", "-n", "1")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "structural")
	assert.NotContains(t, r.out, "legacy")

	r = execute(t, "history", "delete", "0")
	require.Equal(t, 0, r.code, r.err)
	r = execute(t, "history", "--json")
	require.NoError(t, json.Unmarshal([]byte(r.out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "legacy", string(recs[0].Mode))

	r = execute(t, "history", "delete", "5")
	assert.Equal(t, 2, r.code)
}

func TestView_LoadsLastResults(t *testing.T) {
	dir := isolate(t)
	r := execute(t, "view", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "run 'ckeyscan scan' first")

	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))
	require.Equal(t, 0, execute(t, "scan", dir).code)

	r = execute(t, "view", "--json", dir)
	require.Equal(t, 0, r.code, r.err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.out), &recs))
	assert.Len(t, recs, 1)

	r = execute(t, "view", dir)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "1 ckey matches found.")
}

func TestAnalyze(t *testing.T) {
	isolate(t)
	r := execute(t, "analyze", "--json", "68656c6c6f")
	require.Equal(t, 0, r.code, r.err)
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.out), &rep))
	assert.Equal(t, "Cn8eVZg", rep["base58"])
	assert.Equal(t, "hello", rep["ascii"])

	r = execute(t, "analyze", "68656c6c6f")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "NBSWY3DP")

	r = execute(t, "analyze", "zz")
	assert.Equal(t, 2, r.code)
}

func TestPassword(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "wallet.dat")
	writeWallet(t, p, []byte("\x00\x00minversion\x00 correct horse battery \x01\x02"))

	r := execute(t, "password", p)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "offset: 2")
	assert.Contains(t, r.out, "correct horse battery")

	writeWallet(t, p, []byte("no marker"))
	r = execute(t, "password", p)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "no minversion marker")
}

func TestBits(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "wallet.dat")
	writeWallet(t, p, []byte{0xA5, 0x01})

	r := execute(t, "bits", p)
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "1010010100000001", r.out)

	outPath := filepath.Join(dir, "bits.txt")
	r = execute(t, "bits", p, "-o", outPath)
	require.Equal(t, 0, r.code, r.err)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "1010010100000001", string(got))
	assert.Contains(t, r.err, "Wrote 16 bits")
}

func TestBits_WriteFailureIsError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	dir := isolate(t)
	p := filepath.Join(dir, "wallet.dat")
	writeWallet(t, p, bytes.Repeat([]byte{0xA5}, 1<<16))

	r := execute(t, "bits", p, "-o", "/dev/full")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "writing bits")
	assert.NotContains(t, r.err, "Wrote")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	r := execute(t, "config", "init")
	require.Equal(t, 0, r.code, r.err)
	fc, err := config.LoadFile(filepath.Join(dir, ".ckeyscan.yml"))
	require.NoError(t, err)
	require.NotNil(t, fc.Mode)
	assert.Equal(t, "legacy", *fc.Mode)

	r = execute(t, "config", "init")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "already exists")

	t.Setenv("CKEYSCAN_MODE", "structural")
	r = execute(t, "config", "show")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "mode: structural")
	assert.Contains(t, r.out, "skip_degenerate: true")
}

func TestModesAndTestMode(t *testing.T) {
	isolate(t)
	r := execute(t, "modes")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "legacy")
	assert.Contains(t, r.out, "structural")

	resetFlags(rootCmd)
	rootCmd.SetIn(bytes.NewReader([]byte("\x01\x04ckey!ABCDEF\x04")))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetIn(nil) })
	require.Equal(t, 0, run([]string{"test-mode", "legacy"}))
	// Six bytes is below the record length bound.
	assert.Equal(t, "No matches found.\n0 ckey matches found.\n", out.String())
}

func TestVersionAndCompletion(t *testing.T) {
	isolate(t)
	r := execute(t, "version", "--no-update-check")
	require.Equal(t, 0, r.code, r.err)
	assert.Equal(t, "ckeyscan v"+version+"\n", r.out)

	r = execute(t, "completion", "bash")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "ckeyscan")

	r = execute(t, "completion", "tcsh")
	assert.Equal(t, 2, r.code)
}

func TestLogLevel(t *testing.T) {
	dir := isolate(t)
	writeWallet(t, filepath.Join(dir, "wallet.dat"), legacyRecord(40, 0))
	r := execute(t, "scan", "--log-level", "debug", "--no-cache", dir)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.err, "ENGN")

	r = execute(t, "scan", "--log-level", "loud", dir)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "unknown log level")
}
