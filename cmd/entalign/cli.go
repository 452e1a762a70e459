package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/alignlab/entalign/internal/config"
	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/errors"
	"github.com/alignlab/entalign/internal/match"
	"github.com/alignlab/entalign/internal/ops"
	"github.com/alignlab/entalign/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, store *corpus.Store, engine *match.Engine) *cli.App {
	app := &cli.App{
		Name:    "entalign",
		Usage:   "Entity-to-text alignment and annotation ledger",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(db),
			alignCmd(store, engine),
			submitCmd(db, store),
			annotationsCmd(db),
			deleteCmd(db),
			categoriesCmd(db, store),
			statusCmd(db, store),
			serveCmd(db, store, engine),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// userFlag is shared by every ledger command.
func userFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Acting user identifier"}
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Load a JSONL corpus file into the texts table",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			input := ops.IngestInput{Path: c.Args().First()}

			output, err := ops.Ingest(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// alignCmd creates the align command.
func alignCmd(store *corpus.Store, engine *match.Engine) *cli.Command {
	return &cli.Command{
		Name:      "align",
		Usage:     "Propose entity matches for one text and category",
		ArgsUsage: "[text_id]",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Candidate category name"},
			&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Value: "semantic", Usage: "Matching strategy: semantic|fuzzy"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AlignInput{
				User:     c.String("user"),
				TextID:   c.Args().First(),
				Category: c.String("category"),
				Strategy: match.Strategy(c.String("strategy")),
			}

			output, err := ops.Align(c.Context, store, engine, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// submitPayload is the JSON shape piped to the submit command.
type submitPayload struct {
	TextID     string              `json:"text_id"`
	Text       string              `json:"text,omitempty"`
	Entities   map[string][]string `json:"entities"`
	Matched    map[string][]string `json:"matched,omitempty"`
	Unmatched  map[string][]string `json:"unmatched,omitempty"`
	Undetected map[string][]string `json:"undetected,omitempty"`
}

// submitCmd creates the submit command. The annotation payload is piped as
// JSON via stdin: {"text_id": ..., "entities": {...}, "matched": {...}, ...}
func submitCmd(db *sql.DB, store *corpus.Store) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Persist reviewed annotations (reads a JSON payload from stdin)",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("annotation payload must be piped via stdin"))
			}

			payload, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			var req submitPayload
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return outputError(errors.NewInvalidRequest("invalid JSON payload"))
			}

			output, err := ops.Submit(c.Context, db, store, ops.SubmitInput{
				User:       c.String("user"),
				TextID:     req.TextID,
				Text:       req.Text,
				Entities:   req.Entities,
				Matched:    req.Matched,
				Unmatched:  req.Unmatched,
				Undetected: req.Undetected,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// annotationsCmd creates the annotations command.
func annotationsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "annotations",
		Usage: "List the user's annotation records, newest first",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{User: c.String("user")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one annotation record by id",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			input := ops.DeleteInput{
				User: c.String("user"),
				ID:   c.Args().First(),
			}

			output, err := ops.Delete(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(db *sql.DB, store *corpus.Store) *cli.Command {
	return &cli.Command{
		Name:      "categories",
		Usage:     "Show per-category progress for one text",
		ArgsUsage: "[text_id]",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			input := ops.CategoriesInput{
				User:   c.String("user"),
				TextID: c.Args().First(),
			}

			output, err := ops.Categories(c.Context, db, store, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB, store *corpus.Store) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Aggregate annotation progress across the whole corpus",
		Flags: []cli.Flag{
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Status(c.Context, db, store, ops.StatusInput{User: c.String("user")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, store *corpus.Store, engine *match.Engine) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8765, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, store, engine, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if alignErr, ok := err.(*errors.AlignError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", alignErr.Code, alignErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
