package notes

import (
	"fmt"
	"strings"
)

const (
	titleTemplateConstant       = "Release %s"
	separatorCharacterConstant  = "="
	commentPrefixConstant       = "#"
	commentedLineTemplate       = "# %s"
	emptyHistoryCommentConstant = "# No commits found since the previous release."
	lineBreakConstant           = "\n"
)

// BuildScaffold renders the draft offered to the editor: a title, a separator,
// a blank line, and the commit log with every line commented out.
func BuildScaffold(tag string, commitLog []string) string {
	title := fmt.Sprintf(titleTemplateConstant, tag)

	var builder strings.Builder
	builder.WriteString(title)
	builder.WriteString(lineBreakConstant)
	builder.WriteString(strings.Repeat(separatorCharacterConstant, len(title)))
	builder.WriteString(lineBreakConstant)
	builder.WriteString(lineBreakConstant)
	if len(commitLog) == 0 {
		builder.WriteString(emptyHistoryCommentConstant)
		builder.WriteString(lineBreakConstant)
	}
	for _, logLine := range commitLog {
		builder.WriteString(fmt.Sprintf(commentedLineTemplate, logLine))
		builder.WriteString(lineBreakConstant)
	}
	return builder.String()
}

// StripComments drops lines starting with "#" and trims surrounding blank lines,
// matching what git keeps for a tag created with --cleanup=strip.
func StripComments(content string) string {
	keptLines := make([]string, 0)
	for _, line := range strings.Split(content, lineBreakConstant) {
		if strings.HasPrefix(line, commentPrefixConstant) {
			continue
		}
		keptLines = append(keptLines, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(keptLines, lineBreakConstant))
}
