// Package textutils provides shared string and character constants used
// across this module's sub-packages (property parsing, content-type
// parsing, log formatting, error joining).
package textutils

const (
	OpenBraceChar    = '{'
	CloseBraceChar   = '}'
	DollarChar       = '$'
	BackSlashChar    = '\\'
	HashChar         = '#'
	EqualChar        = '='
	ColonChar        = ':'
	SemiColonChar    = ';'
	ForwardSlashChar = '/'
	PeriodChar       = '.'
)

const (
	EmptyStr        = ""
	EqualStr        = "="
	WhiteSpaceStr   = " "
	ForwardSlashStr = "/"
	PeriodStr       = "."
	ColonStr        = ":"
	SemiColonStr    = ";"
	NewLineString   = "\n"
)
