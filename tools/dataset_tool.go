package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aqua777/go-medagent/llm"
	"github.com/aqua777/go-medagent/nlsql"
	"github.com/aqua777/go-medagent/postprocess"
	"github.com/aqua777/go-medagent/sandbox"
)

// DatasetTool answers natural-language questions about one fixed tabular
// dataset by generating a read-only query, executing it in the sandbox,
// and post-processing the result. The dataset schema is fetched once at
// construction and is immutable for the tool's lifetime.
type DatasetTool struct {
	*BaseTool
	dbPath     string
	tableName  string
	columns    []string
	translator *nlsql.Translator
	sandbox    *sandbox.Sandbox
	processor  *postprocess.Processor
	logger     *slog.Logger
}

// DatasetToolOption configures a DatasetTool.
type DatasetToolOption func(*DatasetTool)

// WithDatasetToolName sets the tool name.
func WithDatasetToolName(name string) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.metadata.Name = name
	}
}

// WithDatasetToolDescription sets the tool description.
func WithDatasetToolDescription(description string) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.metadata.Description = description
	}
}

// WithSandbox sets a custom sandbox.
func WithSandbox(sb *sandbox.Sandbox) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.sandbox = sb
	}
}

// WithProcessor sets a custom post-processor.
func WithProcessor(p *postprocess.Processor) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.processor = p
	}
}

// WithColumns overrides schema introspection (for testing).
func WithColumns(columns []string) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.columns = columns
	}
}

// WithDatasetToolLogger sets the logger.
func WithDatasetToolLogger(logger *slog.Logger) DatasetToolOption {
	return func(dt *DatasetTool) {
		dt.logger = logger
	}
}

// NewDatasetTool creates a tool for the table at dbPath. The schema is
// introspected once; if introspection fails the tool still works, with the
// translator told the columns are unknown.
func NewDatasetTool(dbPath, tableName string, model llm.LLM, opts ...DatasetToolOption) *DatasetTool {
	dt := &DatasetTool{
		BaseTool: NewBaseTool(NewToolMetadata(
			tableName,
			fmt.Sprintf("Answers questions about the %s dataset using generated read-only SQL.", tableName),
		)),
		dbPath:     dbPath,
		tableName:  tableName,
		translator: nlsql.NewTranslator(model),
		sandbox:    sandbox.NewSandbox(),
		processor:  postprocess.NewProcessor(),
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(dt)
	}

	if dt.columns == nil {
		columns, err := dt.sandbox.TableColumns(context.Background(), dt.dbPath, dt.tableName)
		if err != nil {
			dt.logger.Warn("schema introspection failed", "table", dt.tableName, "error", err)
		} else {
			dt.columns = columns
		}
	}

	return dt
}

// Columns returns the dataset schema known to the tool.
func (dt *DatasetTool) Columns() []string {
	return dt.columns
}

// Call runs translate -> execute -> post-process -> format. No error
// crosses this boundary: each stage failure becomes a user-facing message,
// with the typed error kept on the output.
func (dt *DatasetTool) Call(ctx context.Context, question string) *ToolOutput {
	query, err := dt.translator.Translate(ctx, question, dt.tableName, dt.columns)
	if err != nil {
		return NewErrorToolOutput(dt.metadata.Name, question,
			fmt.Sprintf("Error generating SQL from question: %v", err), err)
	}

	rs, err := dt.sandbox.Execute(ctx, dt.dbPath, query)
	if err != nil {
		return NewErrorToolOutput(dt.metadata.Name, question,
			fmt.Sprintf("Error executing SQL: %v", err), err)
	}

	rs = dt.processor.Apply(rs, question)

	text, err := dt.processor.Format(rs)
	if err != nil {
		return NewErrorToolOutput(dt.metadata.Name, question,
			fmt.Sprintf("Error while formatting results: %v", err), err)
	}

	return NewToolOutput(dt.metadata.Name, question, text)
}

// Per-dataset store filenames and table names.
const (
	HeartDBFile    = "heart_disease.db"
	HeartTable     = "heart_disease"
	CancerDBFile   = "cancer.db"
	CancerTable    = "cancer"
	DiabetesDBFile = "diabetes.db"
	DiabetesTable  = "diabetes"
)

// NewHeartTool creates the heart disease dataset tool.
func NewHeartTool(dataDir string, model llm.LLM, opts ...DatasetToolOption) *DatasetTool {
	return NewDatasetTool(filepath.Join(dataDir, HeartDBFile), HeartTable, model, opts...)
}

// NewCancerTool creates the cancer dataset tool.
func NewCancerTool(dataDir string, model llm.LLM, opts ...DatasetToolOption) *DatasetTool {
	return NewDatasetTool(filepath.Join(dataDir, CancerDBFile), CancerTable, model, opts...)
}

// NewDiabetesTool creates the diabetes dataset tool.
func NewDiabetesTool(dataDir string, model llm.LLM, opts ...DatasetToolOption) *DatasetTool {
	return NewDatasetTool(filepath.Join(dataDir, DiabetesDBFile), DiabetesTable, model, opts...)
}

// Ensure DatasetTool implements Tool.
var _ Tool = (*DatasetTool)(nil)
