package ir

// FileRecord is one ingested source file. There is exactly one per FileID.
type FileRecord struct {
	ID          FileID
	Path        string
	Source      string
	ContentHash ContentHash
	Generation  Generation
}

// TokenStreamRecord caches the lexer output for a file.
type TokenStreamRecord struct {
	ID          TokenStreamID
	FileID      FileID
	Tokens      []Spanned[Token]
	ContentHash ContentHash
	Generation  Generation
}

// FunctionRecord is a parsed "def <name> fn ... end-fn" item.
type FunctionRecord struct {
	ID          FunctionID
	Name        string
	FileID      FileID
	Body        []Spanned[Term]
	ContentHash ContentHash
	Generation  Generation
	// Index is the number of statements that precede the definition in
	// its file.
	Index uint32
}

// TestRecord is a parsed "test ... end-test" item.
type TestRecord struct {
	ID          TestID
	FileID      FileID
	Body        []Spanned[Term]
	ContentHash ContentHash
	Generation  Generation
	Index       uint32
}

// StatementRecord is a single top-level term.
type StatementRecord struct {
	ID          StatementID
	FileID      FileID
	Body        []Spanned[Term]
	ContentHash ContentHash
	Generation  Generation
	Index       uint32
}

// ResolvedFunctionRecord is a function whose words have been resolved.
type ResolvedFunctionRecord struct {
	ID          FunctionID
	FileID      FileID
	Body        []Spanned[ResolvedTerm]
	ContentHash ContentHash
	Generation  Generation
}

// ResolvedTestRecord is a test whose words have been resolved.
type ResolvedTestRecord struct {
	ID          TestID
	FileID      FileID
	Body        []Spanned[ResolvedTerm]
	ContentHash ContentHash
	Generation  Generation
}

// ResolvedStatementRecord is a statement whose words have been resolved.
type ResolvedStatementRecord struct {
	ID          StatementID
	FileID      FileID
	Body        []Spanned[ResolvedTerm]
	ContentHash ContentHash
	Generation  Generation
	Index       uint32
}

// FunctionDependencyRecord holds a function's transitive content hash.
type FunctionDependencyRecord struct {
	ID          FunctionID
	ContentHash ContentHash
	Generation  Generation
}

// TestDependencyRecord holds a test's transitive content hash.
type TestDependencyRecord struct {
	ID          TestID
	ContentHash ContentHash
	Generation  Generation
}

// TestResultRecord is the outcome of one test execution.
type TestResultRecord struct {
	ID          TestID
	Passed      bool
	Output      string
	ContentHash ContentHash
	Generation  Generation
}

func (r *FileRecord) GenerationRef() *Generation               { return &r.Generation }
func (r *TokenStreamRecord) GenerationRef() *Generation        { return &r.Generation }
func (r *FunctionRecord) GenerationRef() *Generation           { return &r.Generation }
func (r *TestRecord) GenerationRef() *Generation               { return &r.Generation }
func (r *StatementRecord) GenerationRef() *Generation          { return &r.Generation }
func (r *ResolvedFunctionRecord) GenerationRef() *Generation   { return &r.Generation }
func (r *ResolvedTestRecord) GenerationRef() *Generation       { return &r.Generation }
func (r *ResolvedStatementRecord) GenerationRef() *Generation  { return &r.Generation }
func (r *FunctionDependencyRecord) GenerationRef() *Generation { return &r.Generation }
func (r *TestDependencyRecord) GenerationRef() *Generation     { return &r.Generation }
func (r *TestResultRecord) GenerationRef() *Generation         { return &r.Generation }
