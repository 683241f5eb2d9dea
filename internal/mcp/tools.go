package mcp

import "github.com/mark3labs/mcp-go/mcp"

var createToolDef = mcp.NewTool("summary_create",
	mcp.WithDescription(
		"Initialize the living project summary for a repository. Fails if one already exists. "+
			"All five tier-1 sections (file_structure, tech_stack, patterns, commands, architecture) "+
			"must be provided and non-empty; additional technical or narrative sections may be included.",
	),
	mcp.WithString("repository",
		mcp.Required(),
		mcp.Description("Repository name, the unique key (e.g. 'acme/api')"),
	),
	mcp.WithString("git_url",
		mcp.Description("Git remote URL, descriptive only"),
	),
	mcp.WithString("current_commit",
		mcp.Description("Commit the initial values describe"),
	),
	mcp.WithObject("sections",
		mcp.Required(),
		mcp.Description("Section name to value. Must cover every tier-1 section; unknown names are rejected."),
	),
)

var updateTechnicalToolDef = mcp.NewTool("summary_update_technical",
	mcp.WithDescription(
		"Apply a commit-pinned batch of technical section updates (file_structure, tech_stack, patterns, "+
			"commands, architecture, frontend, backend, database_info, services, data_flow, custom_tooling). "+
			"Previous values are kept in per-section history; the batch applies atomically.",
	),
	mcp.WithString("repository",
		mcp.Required(),
		mcp.Description("Repository whose summary to update"),
	),
	mcp.WithString("to_commit",
		mcp.Required(),
		mcp.Description("Commit the new values describe"),
	),
	mcp.WithObject("sections",
		mcp.Required(),
		mcp.Description("Technical section name to new value. Narrative or unknown names are rejected."),
	),
	mcp.WithString("agent_report",
		mcp.Description("Short description of what changed; stored (truncated) as each superseded value's change summary"),
	),
)

var updateNarrativeToolDef = mcp.NewTool("summary_update_narrative",
	mcp.WithDescription(
		"Update narrative sections (summary, purpose, key_decisions, technologies, status, extended_notes). "+
			"Direct section values always win; when raw_report is given, it is carved into the narrative "+
			"sections the caller left out. No commit pin required.",
	),
	mcp.WithString("repository",
		mcp.Required(),
		mcp.Description("Repository whose summary to update"),
	),
	mcp.WithObject("sections",
		mcp.Description("Narrative section name to new value"),
	),
	mcp.WithString("raw_report",
		mcp.Description("Free-form markdown report; fills narrative sections not provided directly"),
	),
	mcp.WithString("commit_ref",
		mcp.Description("Optional commit to pin the write to"),
	),
	mcp.WithString("change_summary",
		mcp.Description("Short description of what changed, stored with superseded values"),
	),
)

var getToolDef = mcp.NewTool("summary_get",
	mcp.WithDescription(
		"Read a project summary. The default shallow view returns current section values only; "+
			"the deep view adds full per-section history and the legacy flat mirror.",
	),
	mcp.WithString("repository",
		mcp.Required(),
		mcp.Description("Repository to read"),
	),
	mcp.WithBoolean("deep",
		mcp.Description("Return the full projection with history (default false)"),
	),
)

var listToolDef = mcp.NewTool("summary_list",
	mcp.WithDescription("List project summaries, most recently updated first."),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset"),
	),
)

var exportToolDef = mcp.NewTool("summary_export",
	mcp.WithDescription(
		"Export summaries and journal entries to a JSONL file. Default path: "+
			"~/.tartarus/exports/<repository>-<timestamp>.jsonl",
	),
	mcp.WithString("path",
		mcp.Description("Destination path (.jsonl, must be in an allowed directory)"),
	),
	mcp.WithString("repository",
		mcp.Description("Restrict the export to one repository"),
	),
)

var journalAddToolDef = mcp.NewTool("journal_add",
	mcp.WithDescription(
		"Append a dev-journal entry for a repository. The repository's summary must exist. "+
			"Entries are append-only.",
	),
	mcp.WithString("repository",
		mcp.Required(),
		mcp.Description("Repository the entry belongs to"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Journal text (markdown)"),
	),
	mcp.WithString("commit_ref",
		mcp.Description("Optional commit to pin the entry to"),
	),
	mcp.WithArray("tags",
		mcp.Description("Tags for categorization"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var journalListToolDef = mcp.NewTool("journal_list",
	mcp.WithDescription("List journal entries newest first, optionally scoped to one repository."),
	mcp.WithString("repository",
		mcp.Description("Restrict to one repository (default: all)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default 20, max 200)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset"),
	),
)
