// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Issue identifiers.
const (
	FileNotFoundId Id = iota + 1
	DocumentParseErrorId
	NotADocumentId
	UnknownPresetId
	CatalogLoadFailedId
	ConfigLoadFailedId
	NoFilesMatchedId
	InvalidOutputFormatId
	PermissionDeniedId
)

type (
	// Id identifies an issue page.
	Id int

	// MarkdownMsg is the Markdown body of an issue page.
	MarkdownMsg string

	// HttpLink is a documentation link.
	HttpLink string

	// Issue is a help page for a known failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the page body followed by its links.
func (i *Issue) Markdown() string {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return md
}

// Render renders the page with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

bpscan could not open the file you asked for.

## Things you can try:
- Check the path for typos
- Use a path relative to the current directory, or an absolute one
- List matching files first:
~~~
$ bpscan scan --format json ./blueprints
~~~`,
	}

	documentParseErrorIssue = &Issue{
		id: DocumentParseErrorId,
		mdMsg: `
# Failed to parse blueprint document!

The file is JSON, but it does not match the blueprint document format.
The error above names the offending path, for example
` + "`blueprint_book.blueprints.3.blueprint.icons.1`" + `.

## Common issues:
- A field name the format does not know (parsing is strict)
- A list index of 0 in a legacy list form (indices start at 1)
- A wire with fewer or more than four values
- Two document kinds in one object

## Things you can try:
- Re-export the blueprint from the game
- Run with verbose mode for the full error chain:
~~~
$ bpscan --verbose refs smelter.json
~~~`,
	}

	notADocumentIssue = &Issue{
		id: NotADocumentId,
		mdMsg: `
# Not a blueprint document!

bpscan reads decoded JSON documents, optionally gzip compressed
(` + "`.json.gz`" + `). It does not decode blueprint exchange strings
(the text starting with ` + "`0eNq`" + `).

## Things you can try:
- Decode the exchange string with another tool and save the JSON
- Make sure the top-level object holds exactly one of
  ` + "`blueprint`, `blueprint_book`, `upgrade_planner`, `deconstruction_planner`",
	}

	unknownPresetIssue = &Issue{
		id: UnknownPresetId,
		mdMsg: `
# Unknown preset!

The preset you passed to ` + "`--preset`" + ` is not in the package catalog.

## Things you can try:
- List the catalog entries and their aliases:
~~~
$ bpscan catalog
~~~

- Add your own entries with a catalog file:
~~~cue
entries: [{
	name:   "Bob"
	prefix: "bob-"
	requires: [{package: "bobplates", version: "1.1.6"}]
}]
~~~`,
	}

	catalogLoadFailedIssue = &Issue{
		id: CatalogLoadFailedId,
		mdMsg: `
# Failed to load catalog file!

A catalog file listed in ` + "`catalog_files`" + ` could not be read or does
not match the catalog schema.

## Common issues:
- Versions must have three parts: ` + "`1.2.3`" + `
- Every entry needs a name and at least one requirement
- Names and aliases must be unique, ignoring case, across all files
  and the built-in entries`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file is not valid CUE, or does not match the config schema.

## Things you can try:
- Show where bpscan looks for its config:
~~~
$ bpscan config path
~~~

- Write a fresh default file and start over:
~~~
$ bpscan config init
~~~`,
	}

	noFilesMatchedIssue = &Issue{
		id: NoFilesMatchedId,
		mdMsg: `
# No files matched!

The scan found no files matching the configured patterns.

## Things you can try:
- Check ` + "`scan.patterns`" + ` and ` + "`scan.ignore`" + ` in your config
- Patterns use doublestar syntax, for example ` + "`**/*.json`",
	}

	invalidOutputFormatIssue = &Issue{
		id: InvalidOutputFormatId,
		mdMsg: `
# Invalid output format!

Supported formats are ` + "`text`, `json`, `yaml` and `toml`" + `.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read a file or write the config.

## Things you can try:
- Check file and directory permissions
- Run bpscan from a directory you own`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():        fileNotFoundIssue,
		documentParseErrorIssue.Id():  documentParseErrorIssue,
		notADocumentIssue.Id():        notADocumentIssue,
		unknownPresetIssue.Id():       unknownPresetIssue,
		catalogLoadFailedIssue.Id():   catalogLoadFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		noFilesMatchedIssue.Id():      noFilesMatchedIssue,
		invalidOutputFormatIssue.Id(): invalidOutputFormatIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
