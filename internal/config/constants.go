package config

const SourceFileExt = ".mc"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".mc", ".match"}

// Config file names searched by FindConfig, in order.
var ConfigFileNames = []string{"matchc.yaml", "matchc.yml"}

// Built-in type names
const (
	IntTypeName    = "Int"
	FloatTypeName  = "Float"
	StringTypeName = "String"
	BytesTypeName  = "Bytes"
	BoolTypeName   = "Bool"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// Annotation names
const (
	PureAnnotation = "pure"
)

// Defaults
const (
	DefaultInlineOwner = "<inline match>"
	DefaultUnknownType = "unknown"
	DefaultListen      = "127.0.0.1:7455"
	DefaultStorePath   = ".matchc/plans.db"
)
