package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukerupert/bulkmail/internal"
	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Overrides(t *testing.T) {
	opts, err := parseFlags([]string{"-input", "s3://lists/a.xlsx", "-subject", "Chào", "-template", "t.html"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, internal.DefaultEnvFile, opts.envFile)

	cfg := &internal.Config{Input: internal.InputConfig{Path: "File_Recipients.xlsx", Subject: "Test email"}}
	opts.apply(cfg)
	assert.Equal(t, "s3://lists/a.xlsx", cfg.Input.Path)
	assert.Equal(t, "Chào", cfg.Input.Subject)
	assert.Equal(t, "t.html", cfg.Input.TemplatePath)
	assert.False(t, opts.dryRun)
}

func TestParseFlags_EmptyOverridesKeepConfig(t *testing.T) {
	opts, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := &internal.Config{Input: internal.InputConfig{Path: "list.xlsx", Subject: "Hi"}}
	opts.apply(cfg)
	assert.Equal(t, "list.xlsx", cfg.Input.Path)
	assert.Equal(t, "Hi", cfg.Input.Subject)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-bogus"}, &bytes.Buffer{})
	assert.Error(t, err)
}

// setupRun points the command at an isolated directory with SMTP credentials
// for an unreachable server; the tests below never get as far as sending.
func setupRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SMTP_SERVER", "127.0.0.1")
	t.Setenv("SMTP_PORT", "1")
	t.Setenv("EMAIL_USER", "school@x.com")
	t.Setenv("EMAIL_PASS", "secret")
	t.Setenv("INPUT_PATH", "")
	t.Setenv("TEMPLATE_PATH", "")
	t.Setenv("SENTRY_ENABLED", "false")
	t.Setenv("METRICS_TEXTFILE", filepath.Join(dir, "bulkmail.prom"))
	return dir
}

func TestRun_MissingColumnsIsFatal(t *testing.T) {
	dir := setupRun(t)
	input := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(input, []byte("STT,Full_Name,Email\n1,Ann,a@x.com\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", input}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, domain.ESCHEMA, domain.ErrorCode(err))
	assert.Contains(t, stdout.String(), "Missing Columns\nMissing columns: Academic_Year")
}

func TestRun_MissingFileIsFatal(t *testing.T) {
	dir := setupRun(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", filepath.Join(dir, "nope.xlsx")}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, domain.EFILE, domain.ErrorCode(err))
	assert.Contains(t, stdout.String(), "File Error")
}

func TestRun_AllRowsRejectedCompletes(t *testing.T) {
	dir := setupRun(t)
	input := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"STT,Full_Name,Academic_Year,Email\n"+
			"x,Ann,2024,a@x.com\n"+
			"2,Bob,2024,not-an-email\n",
	), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", input}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Data Validation Errors")
	assert.Contains(t, stdout.String(), `row 2: invalid STT: "x"`)
	assert.Contains(t, stdout.String(), `row 3: invalid email: "not-an-email"`)
	assert.NotContains(t, stdout.String(), "Error Sending")

	prom, err := os.ReadFile(filepath.Join(dir, "bulkmail.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "bulkmail_reader_rows_total 2")
}

func TestRun_InvalidCredentialsConfig(t *testing.T) {
	setupRun(t)
	t.Setenv("EMAIL_PASS", "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, domain.ECONFIG, domain.ErrorCode(err))
}

func TestRun_DryRunRendersWithoutSending(t *testing.T) {
	dir := setupRun(t)
	input := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"STT,Full_Name,Academic_Year,Email\n"+
			"1,Ann,K65,a@x.com\n"+
			"2,Bob,K65,bad\n",
	), 0o644))
	tmpl := filepath.Join(dir, "t.html")
	require.NoError(t, os.WriteFile(tmpl, []byte("Hi {{Full_Name}}"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-dry-run", "-input", input, "-template", tmpl}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Data Validation Errors\nrow 3: invalid email: \"bad\"")
	assert.Contains(t, stdout.String(), "Ready to Send\n1. Ann <a@x.com>: ready (6 bytes)")
	// The configured server is unreachable, so any send attempt would show up here.
	assert.NotContains(t, stdout.String(), "Error Sending")

	prom, err := os.ReadFile(filepath.Join(dir, "bulkmail.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "bulkmail_sender_emails_failed_total 0")
}
