package store

import (
	"context"
	"database/sql"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableSessions    = "sessions"
	tableLogs        = "interaction_logs"
	tableChunks      = "record_chunks"
	tableLLMRequests = "llm_request_events"
)

const textSize = 2147483647

var (
	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "record_id", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "stage", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "end_reason", Type: field.TypeString, Default: ""},
		{Name: "time_budget", Type: field.TypeInt},
		{Name: "remaining_time", Type: field.TypeInt},
		{Name: "current_topic", Type: field.TypeString, Default: ""},
		{Name: "asked_topics", Type: field.TypeJSON},
		{Name: "probe_count", Type: field.TypeInt, Default: 0},
		{Name: "last_question", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "turn", Type: field.TypeInt, Default: 0},
		{Name: "stats", Type: field.TypeJSON, Nullable: true},
		{Name: "report", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_user_id_created_at", Columns: []*schema.Column{SessionsColumns[1], SessionsColumns[16]}},
		},
	}

	// InteractionLogsColumns holds the columns for the "interaction_logs" table.
	InteractionLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "seq", Type: field.TypeInt},
		{Name: "question", Type: field.TypeString, Size: textSize},
		{Name: "answer", Type: field.TypeString, Size: textSize},
		{Name: "response_time", Type: field.TypeInt},
		{Name: "sub_topic", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// InteractionLogsTable holds the schema information for the "interaction_logs" table.
	InteractionLogsTable = &schema.Table{
		Name:       tableLogs,
		Columns:    InteractionLogsColumns,
		PrimaryKey: []*schema.Column{InteractionLogsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "interactionlog_session_id_seq", Unique: true, Columns: []*schema.Column{InteractionLogsColumns[1], InteractionLogsColumns[2]}},
		},
	}

	// RecordChunksColumns holds the columns for the "record_chunks" table.
	RecordChunksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "record_id", Type: field.TypeString},
		{Name: "idx", Type: field.TypeInt},
		{Name: "category", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: textSize},
		{Name: "embedding", Type: field.TypeJSON, Nullable: true},
		{Name: "embed_model", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// RecordChunksTable holds the schema information for the "record_chunks" table.
	RecordChunksTable = &schema.Table{
		Name:       tableChunks,
		Columns:    RecordChunksColumns,
		PrimaryKey: []*schema.Column{RecordChunksColumns[0]},
		Indexes: []*schema.Index{
			{Name: "recordchunk_record_id_idx", Unique: true, Columns: []*schema.Column{RecordChunksColumns[1], RecordChunksColumns[2]}},
			{Name: "recordchunk_record_id_category", Columns: []*schema.Column{RecordChunksColumns[1], RecordChunksColumns[3]}},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_session_id", Columns: []*schema.Column{LlmRequestEventsColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SessionsTable,
		InteractionLogsTable,
		RecordChunksTable,
		LlmRequestEventsTable,
	}
)

// migrate creates or updates every table.
func migrate(ctx context.Context, db *sql.DB, dialectName string) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dialectName, db))
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
