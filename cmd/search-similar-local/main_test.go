package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchsimilar"
	"github.com/hupe1980/searchsimilar/codec"
	"github.com/hupe1980/searchsimilar/index/indextest"
)

func TestRun_SeedAndQuery(t *testing.T) {
	dir := t.TempDir()
	vectors := indextest.RandomVectors(200, 4, 9)

	// Seeding with the same rng seed reproduces these vectors.
	var queries bytes.Buffer
	queries.Write(codec.MustMarshal(codec.JSON{}, vectors[3]))
	queries.WriteString("\n")
	queries.Write(codec.MustMarshal(codec.JSON{}, vectors[150]))
	queries.WriteString("\n")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-dir", dir,
		"-bucket", "vectors",
		"-header-key", "db/v1/header.bin",
		"-seed", "200",
		"-dim", "4",
		"-partitions", "3",
		"-rng-seed", "9",
		"-codec", "json",
	}, &queries, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)

	var first []searchsimilar.Result
	require.NoError(t, codec.JSON{}.Unmarshal([]byte(lines[0]), &first))
	require.NotEmpty(t, first)
	assert.Equal(t, "content-3", first[0].ID)

	var second []searchsimilar.Result
	require.NoError(t, codec.GoJSON{}.Unmarshal([]byte(lines[1]), &second))
	require.NotEmpty(t, second)
	assert.Equal(t, "content-150", second[0].ID)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var stdout, stderr bytes.Buffer

	err := run(ctx, []string{"-bucket", "b", "-header-key", "a/b"}, strings.NewReader(""), &stdout, &stderr)
	assert.Error(t, err)

	err = run(ctx, []string{"-dir", t.TempDir(), "-bucket", "", "-header-key", ""}, strings.NewReader(""), &stdout, &stderr)
	assert.ErrorIs(t, err, searchsimilar.ErrConfigurationMissing)

	err = run(ctx, []string{"-dir", t.TempDir(), "-bucket", "b", "-header-key", "nokey"}, strings.NewReader("[1]"), &stdout, &stderr)
	assert.ErrorIs(t, err, searchsimilar.ErrMalformedKey)

	err = run(ctx, []string{"-dir", t.TempDir(), "-bucket", "b", "-header-key", "db/header.bin"}, strings.NewReader("[1]"), &stdout, &stderr)
	assert.ErrorIs(t, err, searchsimilar.ErrIndexUnavailable)

	err = run(ctx, []string{"-dir", t.TempDir(), "-bucket", "b", "-header-key", "db/header.bin", "-codec", "xml"}, strings.NewReader(""), &stdout, &stderr)
	assert.Error(t, err)
}
