package commands

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/salikh-syn/syntree/pkg/syntree"
	"github.com/salikh-syn/syntree/pkg/syntree/tscursor"
)

func tracer() trace.Tracer { return otel.Tracer("syntree-demo") }

// buildResult is one file's parse-and-build outcome: the tree itself plus
// the type table needed to render it.
type buildResult struct {
	Tree *syntree.Tree
	Tags *syntree.TypeTagTable[string]
}

// buildFromSource parses source in cfg's configured grammar and builds a
// syntree.Tree from the resulting quad stream, tracing the whole pipeline
// in one span.
func buildFromSource(ctx context.Context, logger *slog.Logger, cfg *Config, path string, source []byte) (buildResult, error) {
	ctx, span := tracer().Start(ctx, "syntree-demo.build",
		trace.WithAttributes(
			attribute.String("file.path", path),
			attribute.Int("file.size", len(source)),
			attribute.String("parser.language", cfg.Parser.Language),
		))
	defer span.End()

	parser, err := tscursor.NewParser(cfg.Parser.Language)
	if err != nil {
		span.RecordError(err)

		return buildResult{}, fmt.Errorf("build parser for %s: %w", path, err)
	}

	parsed, err := parser.Parse(ctx, source)
	if err != nil {
		span.RecordError(err)

		return buildResult{}, fmt.Errorf("parse %s: %w", path, err)
	}

	logger.Debug("parsed source", "path", path, "bytes", parsed.Length)

	opts := syntree.BuildOptions{Cursor: parsed.Cursor, Length: parsed.Length, Logger: logger}
	if cfg.Builder.MaxBufferLength > 0 {
		opts.MaxBufferLength = cfg.Builder.MaxBufferLength
	}

	tree, err := syntree.Build(opts)
	if err != nil {
		span.RecordError(err)

		return buildResult{}, fmt.Errorf("build tree for %s: %w", path, err)
	}

	span.SetAttributes(attribute.Int("tree.length", tree.Length()))

	return buildResult{Tree: tree, Tags: parsed.Tags}, nil
}
