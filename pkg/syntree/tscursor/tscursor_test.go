package tscursor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salikh-syn/syntree/pkg/syntree/tscursor"
)

func TestNewParserUnknownLanguageFails(t *testing.T) {
	t.Parallel()

	_, err := tscursor.NewParser("not-a-real-grammar")
	require.Error(t, err)
	assert.ErrorIs(t, err, tscursor.ErrLanguageNotAvailable)
}

func TestParserParseGoSourceProducesWholeFileRoot(t *testing.T) {
	t.Parallel()

	parser, err := tscursor.NewParser("go")
	require.NoError(t, err)

	source := []byte("package main\n\nfunc main() {}\n")

	result, err := parser.Parse(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, len(source), result.Length)

	require.NotNil(t, result.Cursor)
	assert.Equal(t, 0, result.Cursor.Start(), "the root node covers the whole file")
	assert.Equal(t, len(source), result.Cursor.End())

	kind, ok := result.Tags.Get(result.Cursor.Type())
	require.True(t, ok)
	assert.Equal(t, "source_file", kind, "go-sitter-forest's Go grammar names its root source_file")
}

func TestParserParseWalksWholeStreamBackToStart(t *testing.T) {
	t.Parallel()

	parser, err := tscursor.NewParser("go")
	require.NoError(t, err)

	source := []byte("package p\n\nvar x = 1\n")

	result, err := parser.Parse(context.Background(), source)
	require.NoError(t, err)

	cur := result.Cursor

	records := 0
	minStart := result.Length

	for cur.Pos() > 0 {
		if cur.Start() < minStart {
			minStart = cur.Start()
		}

		records++
		cur.Next()
	}

	assert.Positive(t, records, "a non-empty file parses to at least one record")
	assert.Equal(t, 0, minStart, "the stream must reach all the way back to offset 0")
}

func TestParserParseWithSharesInternerAcrossParses(t *testing.T) {
	t.Parallel()

	parser, err := tscursor.NewParser("go")
	require.NoError(t, err)

	interner := tscursor.NewInterner()

	first, err := parser.ParseWith(context.Background(), []byte("package a\n"), interner)
	require.NoError(t, err)

	second, err := parser.ParseWith(context.Background(), []byte("package b\n"), interner)
	require.NoError(t, err)

	assert.Equal(t, first.Cursor.Type(), second.Cursor.Type(), "the same grammar kind must intern to the same id across parses sharing an Interner")
	assert.Same(t, interner.Tags(), first.Tags)
	assert.Same(t, interner.Tags(), second.Tags)
}
