package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/ops"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tartarus",
		Usage:   "Living project summaries and dev journal",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db),
			updateTechCmd(db, cfg),
			updateNarrativeCmd(db, cfg),
			showCmd(db),
			listCmd(db),
			journalCmd(db),
			exportCmd(db, cfg),
			uiCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a project summary (reads a JSON sections object from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Required: true, Usage: "Repository name (e.g. org/repo)"},
			&cli.StringFlag{Name: "git-url", Usage: "Git remote URL"},
			&cli.StringFlag{Name: "commit", Aliases: []string{"c"}, Usage: "Commit hash to pin the initial sections to"},
		},
		Action: func(c *cli.Context) error {
			sections, err := readSectionsStdin()
			if err != nil {
				return outputError(err)
			}

			input := ops.CreateInput{
				Repository: c.String("repository"),
				Sections:   sections,
			}
			if gitURL := c.String("git-url"); gitURL != "" {
				input.GitURL = &gitURL
			}
			if commit := c.String("commit"); commit != "" {
				input.CurrentCommit = &commit
			}

			output, err := ops.Create(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateTechCmd creates the update-tech command.
func updateTechCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "update-tech",
		Usage: "Update technical sections (reads a JSON sections object from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Required: true, Usage: "Repository name"},
			&cli.StringFlag{Name: "to-commit", Aliases: []string{"c"}, Required: true, Usage: "Commit hash the new values describe"},
			&cli.StringFlag{Name: "report", Usage: "Short description of what changed"},
		},
		Action: func(c *cli.Context) error {
			sections, err := readSectionsStdin()
			if err != nil {
				return outputError(err)
			}

			input := ops.UpdateTechnicalInput{
				Repository:  c.String("repository"),
				ToCommit:    c.String("to-commit"),
				Sections:    sections,
				AgentReport: c.String("report"),
			}

			output, err := ops.UpdateTechnical(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateNarrativeCmd creates the update-narrative command.
func updateNarrativeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "update-narrative",
		Usage: "Update narrative sections (stdin: JSON sections object, or free text with --raw)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Required: true, Usage: "Repository name"},
			&cli.StringFlag{Name: "commit", Aliases: []string{"c"}, Usage: "Optional commit hash to pin the write to"},
			&cli.StringFlag{Name: "change-summary", Usage: "Short description of what changed"},
			&cli.BoolFlag{Name: "raw", Usage: "Treat stdin as a free-form report instead of JSON sections"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateNarrativeInput{
				Repository:    c.String("repository"),
				ChangeSummary: c.String("change-summary"),
			}
			if commit := c.String("commit"); commit != "" {
				input.CommitRef = &commit
			}

			if c.Bool("raw") {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("raw report must be piped via stdin"))
				}
				report, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.RawReport = report
			} else {
				sections, err := readSectionsStdin()
				if err != nil {
					return outputError(err)
				}
				input.Sections = sections
			}

			output, err := ops.UpdateNarrative(c.Context, db, cfg, nil, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a project summary",
		ArgsUsage: "<repository>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "deep", Aliases: []string{"d"}, Usage: "Include per-section history and provenance"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("repository argument is required"))
			}
			repository := c.Args().First()

			if c.Bool("deep") {
				output, err := ops.GetDeep(c.Context, db, repository)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.GetShallow(c.Context, db, repository)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List project summaries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, c.Int("limit"), c.Int("offset"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// journalCmd creates the journal command with add/list subcommands.
func journalCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Dev journal entries",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a journal entry (reads content from stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Required: true, Usage: "Repository name"},
					&cli.StringFlag{Name: "commit", Aliases: []string{"c"}, Usage: "Commit hash the entry refers to"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					if !stdinHasData() {
						return outputError(errors.NewInvalidRequest("content must be piped via stdin"))
					}
					content, err := readStdin()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}

					input := ops.JournalAddInput{
						Repository: c.String("repository"),
						Content:    content,
						Tags:       parseTags(c.String("tags")),
					}
					if commit := c.String("commit"); commit != "" {
						input.CommitRef = &commit
					}

					output, err := ops.JournalAdd(c.Context, db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List journal entries, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Usage: "Filter by repository"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.JournalList(c.Context, db, c.String("repository"), c.Int("limit"), c.Int("offset"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export summaries and journal entries to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.tartarus/exports/<repository>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Usage: "Filter by repository"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path: c.String("path"),
			}
			if repository := c.String("repository"); repository != "" {
				input.Repository = &repository
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command which serves the web interface.
func uiCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the read-only web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Value: 8321, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
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
	if terr, ok := err.(*errors.TartarusError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", terr.Code, terr.Message), 1)
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

// readSectionsStdin reads a JSON object mapping section names to bodies
// from stdin.
func readSectionsStdin() (map[string]string, error) {
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("a JSON sections object must be piped via stdin")
	}
	raw, err := readStdin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if raw == "" {
		return nil, errors.NewInvalidRequest("sections are required")
	}
	var sections map[string]string
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid sections JSON: %v", err))
	}
	return sections, nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
