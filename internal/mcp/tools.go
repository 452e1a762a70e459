package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Every tool takes the acting user explicitly; the stdio
// transport has no request identity of its own.

var alignToolDef = mcp.NewTool("entity_align",
	mcp.WithDescription("Align candidate entities of one category against a corpus text. Returns machine proposals for human review; nothing is persisted."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
	mcp.WithString("text_id", mcp.Required(), mcp.Description("Corpus text identifier")),
	mcp.WithString("category", mcp.Required(), mcp.Description("Candidate category name")),
	mcp.WithString("strategy", mcp.Description("Matching strategy: semantic (default) or fuzzy")),
)

var submitToolDef = mcp.NewTool("annotation_submit",
	mcp.WithDescription("Persist reviewed annotations, one record per category. Categories the user already annotated are skipped; the first write wins."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
	mcp.WithString("text_id", mcp.Required(), mcp.Description("Text identifier")),
	mcp.WithString("text", mcp.Description("Text body; falls back to the corpus when omitted")),
	mcp.WithObject("entities", mcp.Required(), mcp.Description("Per-category entity lists, e.g. {\"drugs\": [\"aspirin\"]}")),
	mcp.WithObject("matched", mcp.Description("Per-category entities confirmed present in the text")),
	mcp.WithObject("unmatched", mcp.Description("Per-category entities confirmed absent from the text")),
	mcp.WithObject("undetected", mcp.Description("Per-category entities the matcher missed but the annotator found")),
)

var listToolDef = mcp.NewTool("annotation_list",
	mcp.WithDescription("List the user's annotation records, newest first, each with its source text."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
)

var deleteToolDef = mcp.NewTool("annotation_delete",
	mcp.WithDescription("Delete one annotation record by id. Only the owning user may delete."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
	mcp.WithString("id", mcp.Required(), mcp.Description("Annotation record id")),
)

var categoriesToolDef = mcp.NewTool("text_categories",
	mcp.WithDescription("Report the user's per-category progress on one corpus text."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
	mcp.WithString("text_id", mcp.Required(), mcp.Description("Corpus text identifier")),
)

var statusToolDef = mcp.NewTool("text_status",
	mcp.WithDescription("Aggregate the user's annotation progress across the whole corpus."),
	mcp.WithString("user", mcp.Required(), mcp.Description("Acting user identifier")),
)
